// Package summary is the end-of-session screen: per-item results and the
// transcript save outcome.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/study"
	"github.com/dlemos/caderno/internal/transcript"
	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/layout"
	"github.com/dlemos/caderno/internal/ui/theme"
)

// Options carries the per-mode extras for rendering and the transcript.
type Options struct {
	FinalVerdict study.Score
	FinalSummary string
}

type savedMsg struct {
	Path string
	Err  error
}

// SummaryScreen implements screen.Screen for the session wrap-up.
type SummaryScreen struct {
	sess    *study.Session
	loc     notes.Location
	folders notes.FolderNames
	opts    Options

	savedPath string
	saveErr   error
	saved     bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a summary screen. The transcript is saved on Init.
func New(sess *study.Session, loc notes.Location, folders notes.FolderNames, opts Options) *SummaryScreen {
	return &SummaryScreen{
		sess:    sess,
		loc:     loc,
		folders: folders,
		opts:    opts,
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	sess := s.sess
	loc := s.loc
	folders := s.folders
	topts := transcript.Options{
		FinalVerdict: s.opts.FinalVerdict,
		FinalSummary: s.opts.FinalSummary,
	}
	return func() tea.Msg {
		path, err := transcript.Save(sess, loc, folders, topts)
		return savedMsg{Path: path, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Esc", Description: "Back to notes"}}
	if s.saveErr != nil {
		hints = append([]layout.KeyHint{{Key: "R", Description: "Retry save"}}, hints...)
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saved = true
		s.savedPath = msg.Path
		s.saveErr = msg.Err
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			if s.saveErr != nil {
				s.saved = false
				return s, s.Init()
			}
		case "esc", "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).Bold(true).
		Render("Session complete"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(s.sess.NoteTitle()))
	b.WriteString("\n\n")

	if s.opts.FinalVerdict != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Accent).Bold(true).
			Render("Verdict: " + verdictLabel(s.opts.FinalVerdict)))
		b.WriteString("\n")
		if s.opts.FinalSummary != "" {
			wrapped := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).
				Render(s.opts.FinalSummary)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, wrapped))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	items := s.sess.Items()
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	if len(items) > 1 {
		bar := components.NewProgressBar(
			fmt.Sprintf("%d/%d", done, len(items)),
			float64(done)/float64(len(items)), false, min(width-20, 44))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	for i, item := range items {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderItemLine(i, item)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case !s.saved:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("Saving transcript..."))
	case s.saveErr != nil:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Could not save the transcript: " + s.saveErr.Error()))
	default:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Success).
			Render("Transcript saved to " + s.savedPath))
	}

	return b.String()
}

func (s *SummaryScreen) renderItemLine(index int, item study.Item) string {
	mark := lipgloss.NewStyle().Foreground(theme.Border).Render("○")
	if item.Completed {
		mark = lipgloss.NewStyle().Foreground(theme.Success).Render("●")
	}

	line := fmt.Sprintf("%s %d. %s", mark, index+1, item.Title)
	if item.Evaluation != nil {
		line += "  " + lipgloss.NewStyle().Foreground(theme.Accent).
			Render(verdictLabel(item.Evaluation.Score))
	} else if item.SupportLevel > 1 {
		line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("support %d", item.SupportLevel))
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render(line)
}

func verdictLabel(score study.Score) string {
	switch score {
	case study.ScoreStrongHire:
		return "Strong Hire"
	case study.ScoreHire:
		return "Hire"
	case study.ScoreMixed:
		return "Mixed"
	case study.ScoreNoHire:
		return "No Hire"
	default:
		return string(score)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
