package learning

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/theme"
)

var dialogLabels = components.DialogLabels{Assistant: "Tutor", User: "You"}

func (s *LearningScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.sess == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Reading the note and picking concepts...")
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}
	if s.pickerOpen {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s.picker.View())
	}

	var b strings.Builder

	item := s.sess.Current()
	titleLine := lipgloss.NewStyle().
		Foreground(theme.Secondary).Bold(true).
		Render("  " + item.Title)
	if item.Difficulty != "" {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Difficulty)
	}
	if item.SupportLevel > 1 {
		titleLine += "  " + lipgloss.NewStyle().Foreground(theme.Accent).
			Render(fmt.Sprintf("support %d", item.SupportLevel))
	}
	if item.ActiveSub != "" {
		for _, sub := range item.SubItems {
			if sub.ID == item.ActiveSub {
				titleLine += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("· "+sub.Title)
			}
		}
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

	// Dialog fills the space between the header lines and the input row.
	dialogHeight := height - 6
	b.WriteString(components.RenderDialog(s.sess.History(), s.partial, dialogLabels, width-4, dialogHeight))
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
		Render("End this session?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("The transcript will be saved to your notes."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Success).
		Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).
		Render("[N] No, keep going"))
	return b.String()
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
