package pair

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/theme"
)

var dialogLabels = components.DialogLabels{Assistant: "Navigator", User: "You"}

func (s *PairScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", s.errMsg))
	}
	if s.sess == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Preparing a challenge from your note...")
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	var b strings.Builder

	item := s.sess.Current()
	titleLine := lipgloss.NewStyle().
		Foreground(theme.Secondary).Bold(true).
		Render("  " + item.Title)
	if item.Difficulty != "" {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Difficulty)
	}
	if item.Completed {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.Success).Render("done")
	}
	b.WriteString(titleLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	dialogHeight := height - 5
	b.WriteString(components.RenderDialog(s.sess.History(), "", dialogLabels, width-4, dialogHeight))
	b.WriteString("\n\n")

	if s.sess.Busy() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("  thinking..."))
	} else {
		b.WriteString("  " + s.input.View())
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render("Leave the challenge?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("The transcript of this pairing session will be saved."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Success).
		Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).
		Render("[N] No, keep pairing"))
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
