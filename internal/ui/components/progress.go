package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	filledStr := lipgloss.NewStyle().
		Background(theme.Secondary).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// ItemDots renders per-item session progress as a row of markers: filled
// for completed items, the accent marker for the current one.
func ItemDots(current, total int, completed func(int) bool) string {
	var b strings.Builder
	for i := 0; i < total; i++ {
		var s string
		switch {
		case i == current:
			s = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("●")
		case completed(i):
			s = lipgloss.NewStyle().Foreground(theme.Success).Render("●")
		default:
			s = lipgloss.NewStyle().Foreground(theme.Border).Render("○")
		}
		b.WriteString(s)
		if i < total-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}
