package render

import "github.com/charmbracelet/lipgloss"

// Palette
const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorBrand   lipgloss.Color = "#94e2d5"
	colorUp      lipgloss.Color = "#f38ba8"
	colorDown    lipgloss.Color = "#a6e3a1"
	colorBar     lipgloss.Color = "#89b4fa"
	colorWarning lipgloss.Color = "#f9e2af"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).MarginTop(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorSubtext)
	barStyle     = lipgloss.NewStyle().Foreground(colorBar)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	bubbleStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// trendStyle colors spending increases red and decreases green.
func trendStyle(trend string) lipgloss.Style {
	switch trend {
	case "up":
		return lipgloss.NewStyle().Foreground(colorUp)
	case "down":
		return lipgloss.NewStyle().Foreground(colorDown)
	default:
		return mutedStyle
	}
}
