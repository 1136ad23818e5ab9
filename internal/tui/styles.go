package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Theme is the set of styles every view renders with. Two palettes ship:
// a dark one for typical terminals and a light one for pale backgrounds.
type Theme struct {
	Title       lipgloss.Style
	Tagline     lipgloss.Style
	Label       lipgloss.Style
	Selected    lipgloss.Style
	Dim         lipgloss.Style
	Accent      lipgloss.Style
	Value       lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	HelpKey     lipgloss.Style
	HelpLabel   lipgloss.Style
	Placeholder lipgloss.Style
	Result      lipgloss.Style
}

func darkTheme() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true),
		Tagline:     lipgloss.NewStyle().Foreground(lipgloss.Color("#505868")).Italic(true),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#e4e4ec")).Bold(true),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("#505868")),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474")),
		Value:       lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		HelpKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")),
		HelpLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("#505868")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#343c4a")),
		Result:      lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844")).Bold(true),
	}
}

func lightTheme() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")).Bold(true),
		Tagline:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Italic(true),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("#4b5563")),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Bold(true),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		Value:       lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d")),
		HelpKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4b5563")),
		HelpLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")),
		Result:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a16207")).Bold(true),
	}
}

// spinnerFrames is the pending indicator shown while the session is loading.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type spinnerTickMsg time.Time

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// helpEntry renders a single "key label" pair for help bars.
func (t Theme) helpEntry(key, label string) string {
	return t.HelpKey.Render(key) + " " + t.HelpLabel.Render(label)
}
