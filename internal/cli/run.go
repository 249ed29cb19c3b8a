package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ssup/ssup/internal/env"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostfilter"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/ssup/ssup/internal/logger"
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/network"
	"github.com/ssup/ssup/internal/playbook"
	"github.com/ssup/ssup/internal/ui"
	"github.com/ssup/ssup/pkg/sshutil"
)

// Run loads the Supfile, assembles a playbook from args and prints it.
func Run(opts Options, args []string, stdout, stderr io.Writer) error {
	if opts.Debug {
		logger.EnableDebug()
	}
	out, _ := stdout.(*os.File)
	ui.ConfigureColors(opts.NoColor, out)

	log := logger.NewEnvLogger("[ssup]")

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "Can't determine the working directory")
	}
	path, err := manifest.Find(opts.File, cwd)
	if err != nil {
		return err
	}
	sf, err := manifest.Load(path, log)
	if err != nil {
		return err
	}

	// Read before Chdir so a relative --sshconfig is taken from where ssup ran.
	var sshConfig sshutil.Config
	if opts.SSHConfig != "" {
		sshConfig, err = sshutil.ParseConfigFile(opts.SSHConfig, log)
		if err != nil {
			return err
		}
	}

	if err := manifest.Chdir(sf); err != nil {
		return err
	}

	data := helpData(sf)
	if len(args) == 0 {
		ui.PrintHelp(stderr, data, ui.AllSections)
		return errors.New(errors.ErrUsage, "Nothing to run", "Pass a network and commands, or targets.")
	}

	resolver := network.NewResolver(sf.Networks, network.Options{
		Global:    sf.Env,
		Overrides: env.ParseAssignments(opts.Env, log),
		Filter:    hostfilter.Options{Only: opts.Only, Except: opts.Except},
		SSHConfig: sshConfig,
		Logger:    log,
	})

	help := func(arg string) {
		fmt.Fprintf(stderr, "%s unknown: %s\n\n", ui.SymbolFail, arg)
		ui.PrintHelp(stderr, data, ui.AllSections)
	}

	pb, err := playbook.NewAssembler(sf, resolver, help, log).Assemble(args)
	if err != nil {
		return err
	}

	format := opts.Output
	if format == "" || format == playbook.FormatTable {
		ui.PrintHeader(stdout, ui.HeaderInfo{
			Version:  formatVersion(version),
			Desc:     sf.Desc,
			Manifest: sf.Path,
		})
	}

	var exec playbook.Executor = &playbook.Printer{
		Out:           stdout,
		Format:        format,
		DisablePrefix: opts.DisablePrefix,
	}
	return exec.Execute(pb)
}

// helpData lists the Supfile's contents with host passwords left out.
func helpData(sf *manifest.Supfile) ui.HelpData {
	var data ui.HelpData

	for _, n := range sf.Networks {
		hn := ui.HelpNetwork{Name: n.Name}
		for _, entry := range n.Hosts {
			hn.Hosts = append(hn.Hosts, hostLabel(entry))
		}
		data.Networks = append(data.Networks, hn)
	}

	for _, c := range sf.Commands {
		data.Commands = append(data.Commands, ui.HelpCommand{Name: c.Name, Desc: c.Desc})
	}

	for _, t := range sf.Targets {
		ht := ui.HelpTarget{Name: t.Name}
		for _, b := range t.Bindings {
			ht.Bindings = append(ht.Bindings, ui.HelpBinding{Command: b.Command, Network: b.Network})
		}
		data.Targets = append(data.Targets, ht)
	}

	return data
}

func hostLabel(entry manifest.HostEntry) string {
	if entry.Record != nil {
		return entry.Record.String()
	}
	h, err := hostspec.Parse(entry.Spec)
	if err != nil {
		return hostspec.Split(entry.Spec).HostPart
	}
	return h.String()
}
