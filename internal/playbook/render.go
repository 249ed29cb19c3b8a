package playbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/network"
	"github.com/ssup/ssup/internal/ui"
	"github.com/ssup/ssup/internal/util"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Printer.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Redacted replaces passwords in printed plans.
const Redacted = "********"

// Printer is the built-in Executor: it prints the plan instead of running it.
type Printer struct {
	Out    io.Writer
	Format string

	// DisablePrefix drops the "network | " prefix from command lines.
	DisablePrefix bool
}

// Execute implements Executor.
func (p *Printer) Execute(pb *PlayBook) error {
	switch p.Format {
	case "", FormatTable:
		_, err := io.WriteString(p.Out, RenderPlan(pb, p.DisablePrefix))
		return err
	case FormatYAML:
		return p.writeYAML(pb)
	}
	return errors.New(errors.ErrUsage,
		fmt.Sprintf("Unknown output format %q", p.Format),
		fmt.Sprintf("Use %s or %s.", FormatTable, FormatYAML))
}

// planCommand is a command as written to the YAML plan. Command.Name is
// not part of the Supfile body, so it is added back here.
type planCommand struct {
	Name             string `yaml:"name"`
	manifest.Command `yaml:",inline"`
}

type planPlay struct {
	Network  network.Resolved `yaml:"network"`
	Commands []planCommand    `yaml:"commands"`
}

func (p *Printer) writeYAML(pb *PlayBook) error {
	redacted := Redact(pb)
	plays := make([]planPlay, 0, len(redacted.Plays))
	for _, play := range redacted.Plays {
		pp := planPlay{Network: play.Network, Commands: make([]planCommand, 0, len(play.Commands))}
		for _, cmd := range play.Commands {
			pp.Commands = append(pp.Commands, planCommand{Name: cmd.Name, Command: cmd})
		}
		plays = append(plays, pp)
	}

	doc := struct {
		Mode  string     `yaml:"mode"`
		Plays []planPlay `yaml:"plays"`
	}{Mode: pb.Mode.String(), Plays: plays}

	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "Failed to encode the playbook")
	}
	return enc.Close()
}

// Redact returns a copy of pb with every host password masked.
func Redact(pb *PlayBook) *PlayBook {
	out := &PlayBook{Mode: pb.Mode, Plays: make([]Play, len(pb.Plays))}
	for i, play := range pb.Plays {
		hosts := make([]hostspec.Host, len(play.Network.Hosts))
		for j, h := range play.Network.Hosts {
			if h.Password != "" {
				h.Password = Redacted
			}
			hosts[j] = h
		}
		play.Network.Hosts = hosts
		out.Plays[i] = play
	}
	return out
}

// RenderPlan renders the playbook for a terminal. Passwords are never shown.
func RenderPlan(pb *PlayBook, disablePrefix bool) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSecondary)
	labelStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	nameStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder

	plays := util.Pluralize(len(pb.Plays), "play", "plays")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Plan: %d %s (%s mode)", len(pb.Plays), plays, pb.Mode)))
	b.WriteString("\n")

	for i, play := range pb.Plays {
		net := play.Network
		b.WriteString("\n")
		header := fmt.Sprintf("%s Play %d/%d: network %s", ui.SymbolPending, i+1, len(pb.Plays), nameStyle.Render(net.Name))
		if net.Bastion != "" {
			header += labelStyle.Render(" via " + net.Bastion)
		}
		b.WriteString(header + "\n")

		if len(net.Hosts) == 0 {
			b.WriteString(labelStyle.Render("  (no hosts)") + "\n")
		} else {
			b.WriteString(indent(hostTable(net.Hosts), "  "))
		}

		if !net.Env.IsEmpty() {
			b.WriteString(labelStyle.Render("  env: ") + net.Env.AsExport() + "\n")
		}

		prefix := ""
		if !disablePrefix {
			prefix = net.Name + " | "
		}
		for n, cmd := range play.Commands {
			b.WriteString(fmt.Sprintf("  %d. %s", n+1, nameStyle.Render(cmd.Name)))
			if cmd.Desc != "" {
				b.WriteString(labelStyle.Render("  " + strings.TrimSpace(cmd.Desc)))
			}
			b.WriteString("\n")
			for _, line := range commandLines(cmd) {
				b.WriteString("     " + prefix + line + "\n")
			}
		}
	}

	return b.String()
}

func hostTable(hosts []hostspec.Host) string {
	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		pass := ""
		if h.Password != "" {
			pass = Redacted
		}
		sudo := ""
		if h.Sudo {
			sudo = ui.SymbolSuccess
		}
		rows = append(rows, []string{h.Host, h.User, pass, h.Tube, h.IdentityFile, sudo})
	}
	titles := []string{"HOST", "USER", "PASS", "TUBE", "ID FILE", "SUDO"}
	return ui.RenderSimpleTable(ui.AutoColumns(titles, rows), rows) + "\n"
}

// commandLines lists what a command does, one step per line.
func commandLines(cmd manifest.Command) []string {
	var lines []string
	if !cmd.Env.IsEmpty() {
		lines = append(lines, "env: "+cmd.Env.AsExport())
	}
	for _, t := range cmd.Upload {
		lines = append(lines, fmt.Sprintf("upload: %s -> %s", t.Src, t.Dst))
	}
	if cmd.Local != "" {
		for _, l := range bodyLines(cmd.Local) {
			lines = append(lines, "local: "+l)
		}
	}
	if cmd.Run != "" {
		for _, l := range bodyLines(cmd.Run) {
			lines = append(lines, "run: "+l)
		}
	}
	for _, t := range cmd.Fetch {
		lines = append(lines, fmt.Sprintf("fetch: %s -> %s", t.Src, t.Dst))
	}

	var flags []string
	if cmd.Stdin {
		flags = append(flags, "stdin")
	}
	if cmd.Once {
		flags = append(flags, "once")
	}
	if cmd.Serial > 0 {
		flags = append(flags, fmt.Sprintf("serial=%d", cmd.Serial))
	}
	if len(flags) > 0 {
		lines = append(lines, "("+util.JoinOrDefault(flags, "")+")")
	}
	return lines
}

func bodyLines(body string) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func indent(s, pad string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n") + "\n"
}
