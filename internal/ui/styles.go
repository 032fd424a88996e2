package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold: high priority, warnings
	colorSuccess = lipgloss.Color("#00E676") // Green: completed
	colorDanger  = lipgloss.Color("#FF5252") // Red: errors, critical
	colorMuted   = lipgloss.Color("#636363") // Gray: de-emphasized
	colorBlue    = lipgloss.Color("#5B8DEF") // Blue: current stage
)

// Status icons.
const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconCurrent = "◎"
	iconWaiting = "·"
	iconBlocked = "⊘"
	iconWarning = "⚠"
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleDanger  = lipgloss.NewStyle().Foreground(colorDanger)
	styleWarning = lipgloss.NewStyle().Foreground(colorAccent)
	styleCurrent = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)

	styleBarFilled = lipgloss.NewStyle().Foreground(colorSuccess)
	styleBarEmpty  = lipgloss.NewStyle().Foreground(colorMuted)
)

// priorityStyles maps a priority label to its badge style.
var priorityStyles = map[string]lipgloss.Style{
	"critical": lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
	"high":     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
	"medium":   lipgloss.NewStyle().Foreground(colorMuted),
}
