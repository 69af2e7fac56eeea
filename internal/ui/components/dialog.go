package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/study"
	"github.com/dlemos/caderno/internal/ui/theme"
)

// DialogLabels names the two parties for a mode.
type DialogLabels struct {
	Assistant string
	User      string
}

// RenderDialog renders a message history plus an optional in-flight
// partial, word-wrapped to width and clipped to the last maxLines lines.
func RenderDialog(history []study.Message, partial string, labels DialogLabels, width, maxLines int) string {
	var b strings.Builder

	wrap := lipgloss.NewStyle().Width(width)

	for _, m := range history {
		b.WriteString(renderMessage(m, labels, wrap))
		b.WriteString("\n")
	}

	if partial != "" {
		b.WriteString(theme.AssistantLabel.Render(labels.Assistant + ":"))
		b.WriteString("\n")
		b.WriteString(wrap.Foreground(theme.Text).Render(partial))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(" ▍"))
		b.WriteString("\n")
	}

	return clipLines(b.String(), maxLines)
}

func renderMessage(m study.Message, labels DialogLabels, wrap lipgloss.Style) string {
	var b strings.Builder

	switch m.Type {
	case study.TypeNotice:
		b.WriteString(wrap.Render(theme.NoticeText.Render("⚠ " + m.Content)))
		b.WriteString("\n")
		return b.String()
	case study.TypeHint:
		b.WriteString(theme.AssistantLabel.Render(labels.Assistant + " (hint):"))
	case study.TypeSolution:
		b.WriteString(theme.AssistantLabel.Render(labels.Assistant + " (solution):"))
	default:
		if m.Role == study.RoleUser {
			b.WriteString(theme.UserLabel.Render(labels.User + ":"))
		} else {
			b.WriteString(theme.AssistantLabel.Render(labels.Assistant + ":"))
		}
	}
	b.WriteString("\n")
	b.WriteString(wrap.Foreground(theme.Text).Render(m.Content))
	b.WriteString("\n")

	if m.SuggestedCode != "" {
		b.WriteString(theme.CodeBlock.Render(m.SuggestedCode))
		b.WriteString("\n")
	}

	return b.String()
}

// clipLines keeps the last maxLines lines so the newest turns stay on
// screen without a scrollback.
func clipLines(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
