package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Usage is the one-line synopsis printed with help.
const Usage = "Usage: ssup [OPTIONS] NETWORK COMMAND [...]\n       ssup [OPTIONS] TARGET [...]\n       ssup [ --help | -v | --version ]"

// HelpNetwork is a network as listed in help. Hosts must already have their
// passwords removed. This mirrors manifest.Network to keep ui free of domain imports.
type HelpNetwork struct {
	Name  string
	Hosts []string
}

// HelpCommand is a command name and its description.
type HelpCommand struct {
	Name string
	Desc string
}

// HelpBinding is one line of a target.
type HelpBinding struct {
	Command string
	Network string
}

// HelpTarget is a target and its bindings in declared order.
type HelpTarget struct {
	Name     string
	Bindings []HelpBinding
}

// HelpData is everything the help screen can show.
type HelpData struct {
	Networks []HelpNetwork
	Commands []HelpCommand
	Targets  []HelpTarget
}

// HelpSections selects which parts of HelpData are printed.
type HelpSections struct {
	Networks bool
	Commands bool
	Targets  bool
}

// AllSections prints everything.
var AllSections = HelpSections{Networks: true, Commands: true, Targets: true}

// HelpRenderer formats the Supfile overview shown on usage errors.
type HelpRenderer struct {
	titleStyle lipgloss.Style
	nameStyle  lipgloss.Style
	mutedStyle lipgloss.Style
	warnStyle  lipgloss.Style
}

// NewHelpRenderer creates a help renderer with default styles.
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary),
		nameStyle:  lipgloss.NewStyle().Bold(true),
		mutedStyle: lipgloss.NewStyle().Foreground(ColorMuted),
		warnStyle:  lipgloss.NewStyle().Foreground(ColorWarning),
	}
}

// Render returns the help text for data.
func (r *HelpRenderer) Render(data HelpData, sections HelpSections) string {
	var sb strings.Builder

	if len(data.Networks) == 0 {
		sb.WriteString(r.warnStyle.Render("No networks defined, makefile mode available"))
		sb.WriteString("\n\n")
	}

	if sections.Networks && len(data.Networks) > 0 {
		sb.WriteString(r.titleStyle.Render("Networks:") + "\n")
		for _, n := range data.Networks {
			sb.WriteString("- " + r.nameStyle.Render(n.Name) + "\n")
			for _, h := range n.Hosts {
				sb.WriteString("  - " + h + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if sections.Commands {
		sb.WriteString(r.titleStyle.Render("Commands:") + "\n")
		width := 0
		for _, c := range data.Commands {
			if w := lipgloss.Width(c.Name); w > width {
				width = w
			}
		}
		for _, c := range data.Commands {
			line := "- " + r.nameStyle.Render(padRight(c.Name, width))
			if desc := strings.TrimSpace(c.Desc); desc != "" {
				line += "  " + r.mutedStyle.Render(desc)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	if sections.Targets && len(data.Targets) > 0 {
		sb.WriteString(r.titleStyle.Render("Targets:") + "\n")
		for _, t := range data.Targets {
			sb.WriteString("- " + r.nameStyle.Render(t.Name) + "\n")
			for _, b := range t.Bindings {
				network := b.Network
				if network == "" {
					network = r.mutedStyle.Render("(network from args)")
				}
				sb.WriteString(fmt.Sprintf("  - %s %s %s\n", b.Command, SymbolArrow, network))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintHelp writes the help text followed by the usage synopsis.
func PrintHelp(w io.Writer, data HelpData, sections HelpSections) {
	fmt.Fprint(w, NewHelpRenderer().Render(data, sections))
	fmt.Fprintln(w, Usage)
}
