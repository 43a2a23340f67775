package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors for light and dark terminals.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleID      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// Reminder status badge styles.
var (
	badgeActive  = lipgloss.NewStyle().Foreground(colorGreen)
	badgePaused  = lipgloss.NewStyle().Foreground(colorDim)
	badgeSnoozed = lipgloss.NewStyle().Foreground(colorYellow)
	badgeDue     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// printField prints an aligned "label: value" line.
func printField(label, value string) {
	fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-10s", label+":")), styleValue.Render(value))
}
