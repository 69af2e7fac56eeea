package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/theme"
)

var dialogLabels = components.DialogLabels{Assistant: "Interviewer", User: "You"}

func (s *InterviewScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", s.errMsg))
	}
	if s.sess == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Preparing interview questions...")
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	var b strings.Builder

	item := s.sess.Current()
	titleLine := lipgloss.NewStyle().
		Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d", s.sess.CurrentIndex()+1))
	if item.Category != "" {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Category)
	}
	if item.Difficulty != "" {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Difficulty)
	}
	if item.Evaluation != nil {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render(string(item.Evaluation.Score))
	}
	b.WriteString(titleLine)
	b.WriteString("\n")

	dots := components.ItemDots(s.sess.CurrentIndex(), s.sess.ItemCount(), func(i int) bool {
		it := s.sess.Item(i)
		return it != nil && it.Completed
	})
	b.WriteString("  " + dots + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	dialogHeight := height - 6
	b.WriteString(components.RenderDialog(s.sess.History(), s.partial, dialogLabels, width-4, dialogHeight))
	b.WriteString("\n\n")

	switch {
	case s.finalizing:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("  preparing the verdict..."))
	case s.transcribing:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("  transcribing..."))
	case s.sess.Busy():
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("  thinking..."))
	case s.audioMode:
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Accent).Render("audio") + " " + s.input.View())
	default:
		b.WriteString("  " + s.input.View())
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render("End the interview early?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("Answered questions keep their evaluations; the transcript will be saved."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Success).
		Render("[Y] Yes, end interview"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).
		Render("[N] No, keep going"))
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
