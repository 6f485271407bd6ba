package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for text-mode rendering.
type Styles struct {
	Header1      lipgloss.Style
	Header2      lipgloss.Style
	Bold         lipgloss.Style
	Muted        lipgloss.Style
	Success      lipgloss.Style
	Error        lipgloss.Style
	Warning      lipgloss.Style
	Info         lipgloss.Style
	ManifestPath lipgloss.Style
}

// DefaultStyles returns the style set. Without a terminal every style is a
// no-op so piped output stays free of escape codes.
func DefaultStyles(colored bool) *Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header1:      plain,
			Header2:      plain,
			Bold:         plain,
			Muted:        plain,
			Success:      plain,
			Error:        plain,
			Warning:      plain,
			Info:         plain,
			ManifestPath: plain,
		}
	}

	return &Styles{
		Header1:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:      lipgloss.NewStyle().Bold(true),
		Bold:         lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:         lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		ManifestPath: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
