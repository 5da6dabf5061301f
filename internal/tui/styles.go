package tui

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor       = lipgloss.Color("#7C3AED")
	UpColor            = lipgloss.Color("#10B981")
	DownColor          = lipgloss.Color("#EF4444")
	BorderColor        = lipgloss.Color("#374151")
	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(TextColor).
				Background(PrimaryColor)

	UpStyle    = lipgloss.NewStyle().Foreground(UpColor)
	DownStyle  = lipgloss.NewStyle().Foreground(DownColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(DownColor)
	ChartStyle = lipgloss.NewStyle().Foreground(PrimaryColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)
)

// ChangeStyle colors a 24h change green when positive and red otherwise.
func ChangeStyle(positive bool) lipgloss.Style {
	if positive {
		return UpStyle
	}
	return DownStyle
}
