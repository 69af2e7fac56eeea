// Package history lists past study sessions and overall totals.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/ui/layout"
	"github.com/dlemos/caderno/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Stats    *store.SessionStats
	Err      error
}

// HistoryScreen displays past sessions, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummary
	stats     *store.SessionStats
	selected  int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{eventRepo: eventRepo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := repo.ListSessions(ctx, store.QueryOpts{Limit: 50})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.Stats(ctx)
		if err != nil {
			return historyLoadedMsg{Sessions: sessions}
		}
		return historyLoadedMsg{Sessions: sessions, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Pick a note and start studying.")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.stats != nil {
		totals := fmt.Sprintf("%d sessions  ·  %d completed  ·  %d items  ·  %s studied",
			s.stats.TotalSessions, s.stats.CompletedSessions,
			s.stats.ItemsCompleted, formatDuration(s.stats.TotalDurationSecs))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(totals)))
		b.WriteString("\n\n")
	}

	visible := height - 4
	start := 0
	if visible > 0 && s.selected >= visible {
		start = s.selected - visible + 1
	}

	for i := start; i < len(s.sessions); i++ {
		if visible > 0 && i-start >= visible {
			break
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			s.renderSessionLine(i)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderSessionLine(i int) string {
	sess := s.sessions[i]

	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}

	note := strings.TrimSuffix(filepath.Base(sess.NotePath), filepath.Ext(sess.NotePath))
	line := fmt.Sprintf("%s%s  %-9s  %-24s  %d/%d items  %s",
		prefix, sess.StartedAt.Local().Format("Jan 02 15:04"),
		modeLabel(sess.Mode), truncate(note, 24),
		sess.ItemsDone, sess.ItemCount, outcomeLabel(sess.Outcome))

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(line)
}

func modeLabel(mode string) string {
	switch mode {
	case "learning":
		return "Learning"
	case "interview":
		return "Interview"
	case "pair":
		return "Pair"
	default:
		return mode
	}
}

func outcomeLabel(outcome string) string {
	switch outcome {
	case "completed":
		return "completed"
	case "abandoned":
		return "left early"
	default:
		return "interrupted"
	}
}

func formatDuration(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
	}
	return fmt.Sprintf("%dm", secs/60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
