package playbook

import (
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/network"
)

// Classify picks the mode for args. It is decided once, before any play is built:
//
//	no networks declared                    -> Makefile
//	networks declared, every arg a target   -> SpecialTarget
//	otherwise                               -> Normal
func Classify(sf *manifest.Supfile, args []string) Mode {
	if len(sf.Networks) == 0 {
		return Makefile
	}
	if len(args) > 0 && allTargets(sf.Targets, args) {
		return SpecialTarget
	}
	return Normal
}

func allTargets(targets manifest.Targets, args []string) bool {
	for _, arg := range args {
		if !targets.Has(arg) {
			return false
		}
	}
	return true
}

// StagesFor returns the network pipeline steps each mode runs.
// SpecialTarget plays only get the synthesized SUP_* env.
func StagesFor(m Mode) network.Stages {
	switch m {
	case SpecialTarget:
		return network.Stages{Defaults: true}
	default:
		return network.AllStages
	}
}
