package playbook

import (
	"fmt"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/logger"
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/network"
	"github.com/ssup/ssup/internal/util"
)

// HelpFunc is called with an argument that named nothing the mode could use.
type HelpFunc func(arg string)

// Assembler builds playbooks for one Supfile.
type Assembler struct {
	supfile  *manifest.Supfile
	networks *network.Resolver
	help     HelpFunc
	log      logger.Logger
}

// NewAssembler creates an assembler. help may be nil.
func NewAssembler(sf *manifest.Supfile, networks *network.Resolver, help HelpFunc, log logger.Logger) *Assembler {
	if help == nil {
		help = func(string) {}
	}
	if log == nil {
		log = logger.NewEnvLogger("[playbook]")
	}
	return &Assembler{supfile: sf, networks: networks, help: help, log: log}
}

// strategy builds the plays for one mode.
type strategy func(a *Assembler, args []string) ([]Play, error)

var strategies = map[Mode]strategy{
	Normal:        (*Assembler).normal,
	Makefile:      (*Assembler).makefile,
	SpecialTarget: (*Assembler).specialTarget,
}

// Assemble classifies args and builds the playbook. No arguments at all is
// a usage error.
func (a *Assembler) Assemble(args []string) (*PlayBook, error) {
	if len(args) == 0 {
		return nil, errors.New(errors.ErrUsage,
			"Nothing to run",
			"Usage: ssup [OPTIONS] NETWORK COMMAND [...]")
	}

	mode := Classify(a.supfile, args)
	a.log.Debug("mode %s for args %v", mode, args)

	plays, err := strategies[mode](a, args)
	if err != nil {
		return nil, err
	}
	return &PlayBook{Mode: mode, Plays: plays}, nil
}

// normal consumes the first argument as the network and appends every
// following command or target into a single play. A target's network
// bindings are ignored here.
func (a *Assembler) normal(args []string) ([]Play, error) {
	name := args[0]
	if !a.networks.Has(name) {
		a.help(name)
		return nil, a.unknownNetwork(name)
	}

	net, err := a.networks.Resolve(name, StagesFor(Normal))
	if err != nil {
		return nil, err
	}

	cmds, err := a.collect(args[1:], false)
	if err != nil {
		return nil, err
	}
	return []Play{{Network: net, Commands: cmds}}, nil
}

// makefile runs every command or target against the localhost network. An
// argument that is both a command and a target contributes both.
func (a *Assembler) makefile(args []string) ([]Play, error) {
	net, err := a.networks.ResolveLocalhost(StagesFor(Makefile))
	if err != nil {
		return nil, err
	}

	cmds, err := a.collect(args, true)
	if err != nil {
		return nil, err
	}
	return []Play{{Network: net, Commands: cmds}}, nil
}

// specialTarget expands each target into one play per binding, each on the
// network the binding names.
func (a *Assembler) specialTarget(args []string) ([]Play, error) {
	var plays []Play
	resolved := make(map[string]network.Resolved)

	for _, arg := range args {
		tgt, _ := a.supfile.Targets.Get(arg)
		for _, b := range tgt.Bindings {
			if b.Network == "" {
				return nil, errors.New(errors.ErrLookup,
					fmt.Sprintf("Target '%s' runs '%s' without naming a network", tgt.Name, b.Command),
					fmt.Sprintf("Write the line as \"%s <network>\", or pass the network first.", b.Command))
			}

			net, ok := resolved[b.Network]
			if !ok {
				if !a.networks.Has(b.Network) {
					a.help(b.Network)
					return nil, a.unknownNetwork(b.Network)
				}
				var err error
				if net, err = a.networks.Resolve(b.Network, StagesFor(SpecialTarget)); err != nil {
					return nil, err
				}
				resolved[b.Network] = net
			}

			cmd, err := a.command(b.Command, tgt.Name)
			if err != nil {
				return nil, err
			}
			plays = append(plays, Play{Network: net, Commands: []manifest.Command{cmd}})
		}
	}
	return plays, nil
}

// collect resolves each argument as a command, then as a target. With
// both false the first match wins; with both true an argument naming a
// command and a target appends the command and then the target's commands.
// An argument matching neither shows help and is skipped.
func (a *Assembler) collect(args []string, both bool) ([]manifest.Command, error) {
	var cmds []manifest.Command
	for _, arg := range args {
		cmd, isCommand := a.supfile.Commands.Get(arg)
		tgt, isTarget := a.supfile.Targets.Get(arg)

		if isCommand {
			a.log.Debug("%s is a command", arg)
			cmds = append(cmds, a.prepare(cmd))
			if !both {
				continue
			}
		}

		if isTarget {
			a.log.Debug("%s is a target with %d bindings", arg, len(tgt.Bindings))
			for _, b := range tgt.Bindings {
				cmd, err := a.command(b.Command, tgt.Name)
				if err != nil {
					return nil, err
				}
				cmds = append(cmds, cmd)
			}
			continue
		}

		if !isCommand {
			a.log.Debug("%s is neither a command nor a target", arg)
			a.help(arg)
		}
	}
	return cmds, nil
}

func (a *Assembler) command(name, target string) (manifest.Command, error) {
	cmd, ok := a.supfile.Commands.Get(name)
	if !ok {
		err := errors.NewUnknown("Command", name)
		err.Message += fmt.Sprintf(" (referenced by target '%s')", target)
		err.Suggestion = "Available commands: " + util.JoinOrNone(a.supfile.Commands.Names())
		return manifest.Command{}, err
	}
	return a.prepare(cmd), nil
}

// prepare evaluates "$(...)" values in the command's env. Failures keep the literal.
func (a *Assembler) prepare(cmd manifest.Command) manifest.Command {
	cmd.Env = a.networks.ResolveEnv(cmd.Env)
	return cmd
}

func (a *Assembler) unknownNetwork(name string) error {
	err := errors.NewUnknown("Network", name)
	err.Suggestion = "Available networks: " + util.JoinOrNone(a.supfile.Networks.Names())
	return err
}
