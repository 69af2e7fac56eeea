// Package pair is the Pair Programming Mode screen: a generated challenge
// and a navigator/driver dialog with a suggested-code panel.
package pair

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/notes"
	svc "github.com/dlemos/caderno/internal/pair"
	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/screens/summary"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/study"
	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/layout"
)

type challengeReadyMsg struct {
	Item *study.Item
	Err  error
}

type turnDoneMsg struct {
	Epoch uint64
	Turn  *svc.Turn
	Err   error
}

// PairScreen implements screen.Screen for a Pair Programming session.
type PairScreen struct {
	service   *svc.Service
	eventRepo store.EventRepo
	snapshots store.SnapshotRepo
	note      notes.Note
	loc       notes.Location
	folders   notes.FolderNames

	sess  *study.Session
	input components.TextInput

	// code is the latest suggested code, shown in its own panel.
	code string

	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*PairScreen)(nil)
var _ screen.KeyHintProvider = (*PairScreen)(nil)
var _ screen.StatusProvider = (*PairScreen)(nil)
var _ screen.EscHandler = (*PairScreen)(nil)

// New creates a Pair Programming screen for one note. A non-nil resume
// session keeps its generated challenge and dialog.
func New(service *svc.Service, eventRepo store.EventRepo, snapshots store.SnapshotRepo, note notes.Note, loc notes.Location, folders notes.FolderNames, resume *study.Session) *PairScreen {
	s := &PairScreen{
		service:   service,
		eventRepo: eventRepo,
		snapshots: snapshots,
		note:      note,
		loc:       loc,
		folders:   folders,
		sess:      resume,
		input:     components.NewTextInput("Talk to your navigator...", 0),
	}
	if resume != nil {
		// Recover the latest suggested code for the side panel.
		for _, m := range resume.History() {
			if m.SuggestedCode != "" {
				s.code = m.SuggestedCode
			}
		}
	}
	return s
}

func (s *PairScreen) Init() tea.Cmd {
	if s.sess != nil {
		return s.input.Init()
	}
	return tea.Batch(s.generateChallenge(), s.input.Init())
}

func (s *PairScreen) Title() string {
	return "Pair Programming"
}

func (s *PairScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	return s.note.Title
}

func (s *PairScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+D", Description: "Finish challenge"},
		{Key: "Esc", Description: "Quit"},
	}
}

// HandleEsc routes Esc into the quit-confirm dialog instead of popping.
func (s *PairScreen) HandleEsc() (bool, tea.Cmd) {
	if !s.quitConfirm && s.errMsg == "" {
		s.quitConfirm = true
		return true, nil
	}
	return false, nil
}

func (s *PairScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case challengeReadyMsg:
		return s.handleChallengeReady(msg)
	case turnDoneMsg:
		return s.handleTurnDone(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.sess != nil && !s.sess.Busy() && !s.quitConfirm {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PairScreen) generateChallenge() tea.Cmd {
	note := s.note
	service := s.service
	return func() tea.Msg {
		text, attachment, err := loadNote(note)
		if err != nil {
			return challengeReadyMsg{Err: err}
		}
		item, err := service.GenerateChallenge(context.Background(), note.Title, text, attachment)
		if err != nil {
			return challengeReadyMsg{Err: err}
		}
		return challengeReadyMsg{Item: item}
	}
}

func (s *PairScreen) handleChallengeReady(msg challengeReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.sess = study.NewSession(study.ModePair, s.note.RelPath, s.note.Title, []study.Item{*msg.Item})

	intro := study.NewMessage(study.RoleAssistant, msg.Item.Body)
	intro.Type = study.TypeIntro
	s.sess.Append(intro)
	s.sess.Current().State = study.StateAnswerPending

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID: s.sess.ID(),
		Action:    "started",
		Mode:      string(study.ModePair),
		NotePath:  s.note.RelPath,
		ItemCount: 1,
	})
	return s, nil
}

// submit sends the driver's message and requests the navigator's turn.
func (s *PairScreen) submit() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" {
		return s, nil
	}

	s.sess.Append(study.NewMessage(study.RoleUser, text))
	resetCmd := s.input.Reset()

	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return s, resetCmd
	}

	item := *s.sess.Current()
	history := s.sess.History()
	code := s.code
	service := s.service
	turnCmd := func() tea.Msg {
		turn, err := service.NextTurn(context.Background(), item, history, code)
		return turnDoneMsg{Epoch: epoch, Turn: turn, Err: err}
	}
	return s, tea.Batch(resetCmd, turnCmd)
}

func (s *PairScreen) handleTurnDone(msg turnDoneMsg) (screen.Screen, tea.Cmd) {
	s.sess.FinishTurn()
	if s.sess.Epoch() != msg.Epoch {
		return s, nil
	}

	if msg.Err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(msg.Err, &invalid) {
			s.sess.Append(study.NewNotice("The navigator's reply could not be read. Try sending again."))
		} else {
			s.sess.Append(study.NewNotice("The navigator's reply failed: " + msg.Err.Error()))
		}
		return s, nil
	}

	m := study.NewMessage(study.RoleAssistant, msg.Turn.Reply)
	m.SuggestedCode = msg.Turn.SuggestedCode
	s.sess.Append(m)
	if msg.Turn.SuggestedCode != "" {
		s.code = msg.Turn.SuggestedCode
	}
	return s, nil
}

func (s *PairScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.sess == nil {
		return s, nil
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			return s, s.endSession("abandoned")
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch key {
	case "enter":
		if !s.sess.Busy() {
			return s.submit()
		}
		return s, nil
	case "ctrl+d":
		if s.sess.Busy() {
			return s, nil
		}
		s.sess.MarkCompleted(0)
		_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
			SessionID: s.sess.ID(),
			Action:    "item_completed",
			Mode:      string(study.ModePair),
		})
		return s, s.endSession("completed")
	}

	if !s.sess.Busy() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PairScreen) endSession(action string) tea.Cmd {
	if action == "abandoned" && s.snapshots != nil {
		_ = store.SaveSessionSnapshot(context.Background(), s.snapshots, s.sess)
	}
	s.sess.Complete()

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    s.sess.ID(),
		Action:       action,
		Mode:         string(study.ModePair),
		NotePath:     s.note.RelPath,
		ItemCount:    1,
		DurationSecs: int(time.Since(s.sess.CreatedAt()).Seconds()),
	})

	sess := s.sess
	loc := s.loc
	folders := s.folders
	return func() tea.Msg {
		return router.ReplaceScreenMsg{
			Screen: summary.New(sess, loc, folders, summary.Options{}),
		}
	}
}

func loadNote(note notes.Note) (string, *llm.Attachment, error) {
	data, err := note.Content()
	if err != nil {
		return "", nil, fmt.Errorf("read note: %w", err)
	}
	if note.IsPDF() {
		return "", &llm.Attachment{MIME: "application/pdf", Data: data}, nil
	}
	return string(data), nil, nil
}
