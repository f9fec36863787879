package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	suggestStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("6"))
	priorityStyle = map[string]lipgloss.Style{
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"urgent": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
)

// statusMarker はステータスを1文字で表します。
func statusMarker(status string) string {
	switch status {
	case "completed":
		return "[x]"
	case "in-progress":
		return "[~]"
	default:
		return "[ ]"
	}
}

func renderPriority(p string) string {
	if s, ok := priorityStyle[p]; ok {
		return s.Render(p)
	}
	return p
}
