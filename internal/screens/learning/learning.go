// Package learning is the Learning Mode screen: Socratic dialog per
// concept, practice problems as sub-items, the support ratchet, and
// background pre-fetch of upcoming intros.
package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	svc "github.com/dlemos/caderno/internal/learning"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/screens/summary"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/study"
	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/layout"
)

// LearningScreen implements screen.Screen for a Learning Mode session.
type LearningScreen struct {
	service    *svc.Service
	prefetcher *svc.Prefetcher
	eventRepo  store.EventRepo
	snapshots  store.SnapshotRepo
	note       notes.Note
	loc        notes.Location
	folders    notes.FolderNames
	maxSupport int

	sess    *study.Session
	stream  *llm.Stream
	partial string
	input   components.TextInput

	picker      components.Picker
	pickerOpen  bool
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*LearningScreen)(nil)
var _ screen.KeyHintProvider = (*LearningScreen)(nil)
var _ screen.StatusProvider = (*LearningScreen)(nil)
var _ screen.EscHandler = (*LearningScreen)(nil)

// New creates a Learning Mode screen for one note. A non-nil resume
// session skips concept extraction and continues where it was saved.
func New(service *svc.Service, eventRepo store.EventRepo, snapshots store.SnapshotRepo, note notes.Note, loc notes.Location, folders notes.FolderNames, maxSupport int, resume *study.Session) *LearningScreen {
	return &LearningScreen{
		service:    service,
		prefetcher: svc.NewPrefetcher(service),
		eventRepo:  eventRepo,
		snapshots:  snapshots,
		note:       note,
		loc:        loc,
		folders:    folders,
		maxSupport: maxSupport,
		sess:       resume,
		input:      components.NewTextInput("Your answer...", 0),
	}
}

func (s *LearningScreen) Init() tea.Cmd {
	if s.sess == nil {
		return tea.Batch(s.extractConcepts(), s.input.Init())
	}

	// Resumed session: the item list already exists.
	s.prefetcher.Kick(context.Background(), s.sess)
	cmds := []tea.Cmd{s.input.Init(), s.waitPrefetch()}
	if len(s.sess.History()) == 0 {
		cmds = append(cmds, s.startIntro())
	}
	return tea.Batch(cmds...)
}

func (s *LearningScreen) Title() string {
	return "Learning"
}

func (s *LearningScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	return fmt.Sprintf("%s  %d/%d", s.note.Title, s.sess.CurrentIndex()+1, s.sess.ItemCount())
}

func (s *LearningScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.pickerOpen {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Open"},
			{Key: "Esc", Description: "Close"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+N/P", Description: "Next/Prev concept"},
		{Key: "Ctrl+O", Description: "Problems"},
		{Key: "Esc", Description: "Quit"},
	}
}

// HandleEsc routes Esc into the quit-confirm dialog instead of popping.
func (s *LearningScreen) HandleEsc() (bool, tea.Cmd) {
	if s.pickerOpen {
		s.pickerOpen = false
		return true, nil
	}
	if !s.quitConfirm && s.errMsg == "" {
		s.quitConfirm = true
		return true, nil
	}
	return false, nil
}

func (s *LearningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case conceptsReadyMsg:
		return s.handleConceptsReady(msg)
	case streamStartedMsg:
		return s.handleStreamStarted(msg)
	case streamFragMsg:
		return s.handleStreamFrag(msg)
	case streamDoneMsg:
		return s.handleStreamDone(msg)
	case streamFailedMsg:
		return s.handleStreamFailed(msg)
	case evalDoneMsg:
		return s.handleEvalDone(msg)
	case prefetchMsg:
		return s.handlePrefetch(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.sess != nil && !s.sess.Busy() && !s.pickerOpen && !s.quitConfirm {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// extractConcepts loads the note and asks for the concept list.
func (s *LearningScreen) extractConcepts() tea.Cmd {
	note := s.note
	service := s.service
	return func() tea.Msg {
		text, attachment, err := loadNote(note)
		if err != nil {
			return conceptsReadyMsg{Err: err}
		}
		items, err := service.ExtractConcepts(context.Background(), note.Title, text, attachment)
		if err != nil {
			return conceptsReadyMsg{Err: err}
		}
		return conceptsReadyMsg{Items: items}
	}
}

func (s *LearningScreen) handleConceptsReady(msg conceptsReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.sess = study.NewSession(study.ModeLearning, s.note.RelPath, s.note.Title, msg.Items,
		study.WithMaxSupport(s.maxSupport))

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID: s.sess.ID(),
		Action:    "started",
		Mode:      string(study.ModeLearning),
		NotePath:  s.note.RelPath,
		ItemCount: s.sess.ItemCount(),
	})

	s.prefetcher.Kick(context.Background(), s.sess)

	return s, tea.Batch(s.startIntro(), s.waitPrefetch())
}

// startIntro begins streaming the current concept's introduction.
func (s *LearningScreen) startIntro() tea.Cmd {
	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return nil
	}
	s.sess.Current().State = study.StateIntroPending

	item := *s.sess.Current()
	service := s.service
	return func() tea.Msg {
		st, err := service.Intro(context.Background(), item)
		if err != nil {
			return streamFailedMsg{Epoch: epoch, Err: err}
		}
		return streamStartedMsg{Epoch: epoch, Stream: st}
	}
}

// startReply begins streaming the tutor's next conversational turn.
func (s *LearningScreen) startReply() tea.Cmd {
	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return nil
	}

	item := *s.sess.Current()
	history := s.sess.History()
	service := s.service
	return func() tea.Msg {
		st, err := service.Reply(context.Background(), item, history)
		if err != nil {
			return streamFailedMsg{Epoch: epoch, Err: err}
		}
		return streamStartedMsg{Epoch: epoch, Stream: st}
	}
}

func (s *LearningScreen) handleStreamStarted(msg streamStartedMsg) (screen.Screen, tea.Cmd) {
	if s.sess.Epoch() != msg.Epoch {
		msg.Stream.Cancel()
		return s, nil
	}
	s.stream = msg.Stream
	return s, waitFrag(msg.Stream, msg.Epoch)
}

func waitFrag(st *llm.Stream, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		frag, ok := st.Recv()
		if !ok {
			return streamDoneMsg{Epoch: epoch, Text: st.Text(), Err: st.Err()}
		}
		return streamFragMsg{Epoch: epoch, Frag: frag}
	}
}

func (s *LearningScreen) handleStreamFrag(msg streamFragMsg) (screen.Screen, tea.Cmd) {
	if s.sess.Epoch() != msg.Epoch || s.stream == nil {
		return s, nil
	}
	s.partial += msg.Frag
	return s, waitFrag(s.stream, msg.Epoch)
}

func (s *LearningScreen) handleStreamDone(msg streamDoneMsg) (screen.Screen, tea.Cmd) {
	s.stream = nil
	s.partial = ""
	s.sess.FinishTurn()

	item := s.sess.Current()

	// The partial text survives an interrupted stream; the notice marks
	// the interruption inline.
	if msg.Text != "" {
		m := study.NewMessage(study.RoleAssistant, msg.Text)
		if item.State == study.StateIntroPending {
			m.Type = study.TypeIntro
		}
		if s.sess.AcceptMessage(msg.Epoch, m) && item.State == study.StateIntroPending {
			item.State = study.StateIntroShown
		}
	}
	if msg.Err != nil {
		if s.sess.Epoch() == msg.Epoch {
			s.sess.Append(study.NewNotice("The response was interrupted: " + msg.Err.Error()))
		}
		return s, nil
	}

	if item.State == study.StateIntroShown || item.State == study.StateFeedbackShown {
		item.State = study.StateAnswerPending
	}

	s.prefetcher.Kick(context.Background(), s.sess)
	return s, nil
}

func (s *LearningScreen) handleStreamFailed(msg streamFailedMsg) (screen.Screen, tea.Cmd) {
	s.sess.FinishTurn()
	if s.sess.Epoch() == msg.Epoch {
		s.sess.Append(study.NewNotice("The response could not be generated: " + msg.Err.Error()))
	}
	return s, nil
}

// submitAnswer records the typed answer and runs the evaluator.
func (s *LearningScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	answer := s.input.Value()
	if answer == "" {
		return s, nil
	}

	s.sess.Append(study.NewMessage(study.RoleUser, answer))
	resetCmd := s.input.Reset()

	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return s, resetCmd
	}

	item := *s.sess.Current()
	history := s.sess.History()
	service := s.service
	evalCmd := func() tea.Msg {
		verdict, feedback, err := service.Evaluate(context.Background(), item, history, answer)
		return evalDoneMsg{Epoch: epoch, Verdict: verdict, Feedback: feedback, Err: err}
	}
	return s, tea.Batch(resetCmd, evalCmd)
}

func (s *LearningScreen) handleEvalDone(msg evalDoneMsg) (screen.Screen, tea.Cmd) {
	s.sess.FinishTurn()
	if s.sess.Epoch() != msg.Epoch {
		return s, nil
	}

	if msg.Err != nil {
		// A malformed verdict is not a continue signal: no transition,
		// visible marker, session stays usable.
		var invalid *llm.ErrInvalidResponse
		if errors.As(msg.Err, &invalid) {
			s.sess.Append(study.NewNotice("The evaluation could not be read. Your answer is kept; try sending again."))
		} else {
			s.sess.Append(study.NewNotice("The evaluation failed: " + msg.Err.Error()))
		}
		return s, nil
	}

	index := s.sess.CurrentIndex()
	switch msg.Verdict {
	case svc.VerdictAdvance:
		s.sess.MarkCompleted(index)
		if msg.Feedback != "" {
			s.sess.Append(study.NewMessage(study.RoleAssistant, msg.Feedback))
		}
		_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
			SessionID: s.sess.ID(),
			Action:    "item_completed",
			Mode:      string(study.ModeLearning),
			ItemIndex: index,
		})
		s.sess.Current().State = study.StateFeedbackShown
		return s, nil

	case svc.VerdictIncreaseSupport:
		s.sess.IncreaseSupport(index)
		if msg.Feedback != "" {
			m := study.NewMessage(study.RoleAssistant, msg.Feedback)
			m.Type = study.TypeHint
			s.sess.Append(m)
		}
		s.sess.Current().State = study.StateFeedbackShown
		return s, s.startReply()

	default:
		if msg.Feedback != "" {
			s.sess.Append(study.NewMessage(study.RoleAssistant, msg.Feedback))
		}
		s.sess.Current().State = study.StateFeedbackShown
		return s, s.startReply()
	}
}

func (s *LearningScreen) handlePrefetch(msg prefetchMsg) (screen.Screen, tea.Cmd) {
	if s.sess != nil && msg.Result.Err == nil {
		s.sess.SeedPrefetched(msg.Result.Index, msg.Result.Messages)
	}
	return s, s.waitPrefetch()
}

func (s *LearningScreen) waitPrefetch() tea.Cmd {
	results := s.prefetcher.Results()
	return func() tea.Msg {
		return prefetchMsg{Result: <-results}
	}
}

func (s *LearningScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
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

	if s.pickerOpen {
		return s.handlePickerKey(msg)
	}

	switch key {
	case "enter":
		if !s.sess.Busy() {
			return s.submitAnswer()
		}
		return s, nil
	case "ctrl+n":
		return s.advance()
	case "ctrl+p":
		return s.previous()
	case "ctrl+o":
		return s.openPicker()
	}

	if !s.sess.Busy() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LearningScreen) advance() (screen.Screen, tea.Cmd) {
	if err := s.sess.Advance(); err != nil {
		return s, nil
	}
	if s.sess.IsComplete() {
		return s, s.endSession("completed")
	}
	s.prefetcher.Kick(context.Background(), s.sess)
	if len(s.sess.History()) == 0 {
		return s, s.startIntro()
	}
	return s, nil
}

func (s *LearningScreen) previous() (screen.Screen, tea.Cmd) {
	if err := s.sess.Previous(); err != nil {
		return s, nil
	}
	return s, nil
}

func (s *LearningScreen) openPicker() (screen.Screen, tea.Cmd) {
	if s.sess.Busy() {
		return s, nil
	}
	item := s.sess.Current()
	if len(item.SubItems) == 0 {
		return s, nil
	}

	options := []components.PickerOption{{Label: "Back to the concept"}}
	for _, sub := range item.SubItems {
		options = append(options, components.PickerOption{Label: sub.Title})
	}
	s.picker = components.NewPicker("Practice problems", options)
	s.pickerOpen = true
	return s, nil
}

func (s *LearningScreen) handlePickerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		s.pickerOpen = false
		return s, nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if !s.picker.Submitted {
		return s, cmd
	}
	s.pickerOpen = false

	subID := ""
	if s.picker.Chosen > 0 {
		subID = s.sess.Current().SubItems[s.picker.Chosen-1].ID
	}

	fresh, err := s.sess.SwitchSubItem(subID)
	if err != nil {
		return s, nil
	}
	if fresh && subID != "" {
		sub := s.sess.Current().SubItems[s.picker.Chosen-1]
		s.sess.Append(svc.SeedMessage(sub.Title))
		return s, s.startReply()
	}
	return s, nil
}

// endSession records the terminal event and hands off to the summary
// screen, which saves the transcript. An abandoned session is snapshotted
// first so `study --resume` can pick it back up.
func (s *LearningScreen) endSession(action string) tea.Cmd {
	if action == "abandoned" && s.snapshots != nil {
		_ = store.SaveSessionSnapshot(context.Background(), s.snapshots, s.sess)
	}
	s.sess.Complete()

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    s.sess.ID(),
		Action:       action,
		Mode:         string(study.ModeLearning),
		NotePath:     s.note.RelPath,
		ItemCount:    s.sess.ItemCount(),
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

// loadNote reads the note body: inline text for markdown, an attachment
// for PDFs.
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
