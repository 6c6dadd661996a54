package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/modecli/argv"
)

var (
	hintNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintTypeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// describeOption returns a one-line summary of the option named by word:
// its names, value type and owning mode. It returns "" if word names no
// option.
func describeOption(m *argv.Model, word string) string {
	name, _, _ := strings.Cut(word, "=")

	o, ok := m.Option(name)
	if !ok {
		return ""
	}

	parts := []string{hintNameStyle.Render(strings.Join(o.Names(), ", "))}

	switch {
	case o.Trigger:
		parts = append(parts, hintTypeStyle.Render("flag"))
	default:
		parts = append(parts, hintTypeStyle.Render(o.Type.String()))
	}

	mode := o.Mode
	if md := m.Mode(o.Mode); md != nil {
		mode = md.Title()
	}

	parts = append(parts, hintStyle.Render("mode "+mode))

	if o.Required {
		parts = append(parts, hintStyle.Render("required"))
	}

	return strings.Join(parts, "  ")
}
