package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#5cb85c")
	dangerColor  = lipgloss.Color("#d9534f")
	spinnerColor = lipgloss.Color("#3498db")

	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	fileNameStyle      = lipgloss.NewStyle().Bold(true)
	hintStyle          = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("147"))

	loadingStyle    = lipgloss.NewStyle().Foreground(spinnerColor).Padding(1, 2)
	spinnerStyle    = lipgloss.NewStyle().Foreground(spinnerColor)
	errorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(dangerColor)
	errorStyle      = lipgloss.NewStyle().Foreground(dangerColor)
	errorBoxStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(dangerColor).Padding(0, 1)

	resultsBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	severityStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	linkStyle       = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("110"))
	previewBoxStyle = lipgloss.NewStyle().MarginTop(1)
)
