// Package playbook turns positional arguments and a Supfile into an ordered
// list of plays, each pairing one resolved network with the commands to run.
package playbook

import (
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/network"
)

// Mode is how the arguments were interpreted.
type Mode int

const (
	// Normal: NETWORK COMMAND|TARGET...
	Normal Mode = iota
	// Makefile: COMMAND|TARGET... against the implicit localhost network.
	Makefile
	// SpecialTarget: TARGET... where every binding names its own network.
	SpecialTarget
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Makefile:
		return "makefile"
	case SpecialTarget:
		return "special-target"
	}
	return "unknown"
}

// Play is one network and the commands to run on it, in order.
type Play struct {
	Network  network.Resolved   `yaml:"network"`
	Commands []manifest.Command `yaml:"commands"`
}

// CommandNames returns the play's command names in order.
func (p Play) CommandNames() []string {
	out := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		out = append(out, c.Name)
	}
	return out
}

// PlayBook is the complete plan for one invocation.
type PlayBook struct {
	Mode  Mode   `yaml:"-"`
	Plays []Play `yaml:"plays"`
}

// IsMakefile reports whether the playbook was built in Makefile mode.
func (pb *PlayBook) IsMakefile() bool {
	return pb.Mode == Makefile
}

// Executor consumes a finished playbook.
type Executor interface {
	Execute(pb *PlayBook) error
}
