package console

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary = lipgloss.Color("#bd93f9") // Dracula Purple
	ColorSuccess = lipgloss.Color("#50fa7b") // Dracula Green
	ColorError   = lipgloss.Color("#ff5555") // Dracula Red
	ColorSubtext = lipgloss.Color("#6272a4") // Dracula Comment
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
}

// newStyles binds the palette to r so color output follows r's profile
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(ColorPrimary).Bold(true),
		label:   r.NewStyle().Foreground(ColorSubtext),
		success: r.NewStyle().Foreground(ColorSuccess).Bold(true),
		err:     r.NewStyle().Foreground(ColorError).Bold(true),
	}
}
