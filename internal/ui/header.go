package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version  string // e.g. "v0.4.0"
	Desc     string // Supfile description, if any
	Manifest string // path of the loaded Supfile
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the banner printed above help and plans.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var output strings.Builder

	output.WriteString(titleStyle.Render("ssup"))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(versionStyle.Render(info.Version))
	}
	output.WriteString("\n")

	if info.Desc != "" {
		output.WriteString(info.Desc)
		output.WriteString("\n")
	}
	if info.Manifest != "" {
		output.WriteString(mutedStyle.Render(info.Manifest))
		output.WriteString("\n")
	}

	output.WriteString(mutedStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader writes the header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}
