// Package interview is the Interview Mode screen: generated questions,
// typed or transcribed answers, per-answer evaluations, final verdict.
package interview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/dlemos/caderno/internal/audio"
	svc "github.com/dlemos/caderno/internal/interview"
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

// InterviewScreen implements screen.Screen for an Interview Mode session.
type InterviewScreen struct {
	service     *svc.Service
	transcriber audio.Transcriber
	eventRepo   store.EventRepo
	snapshots   store.SnapshotRepo
	note        notes.Note
	loc         notes.Location
	folders     notes.FolderNames

	sess    *study.Session
	stream  *llm.Stream
	partial string
	input   components.TextInput

	// audioMode repurposes the input as an audio file path prompt.
	audioMode    bool
	transcribing bool

	finalizing  bool
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*InterviewScreen)(nil)
var _ screen.KeyHintProvider = (*InterviewScreen)(nil)
var _ screen.StatusProvider = (*InterviewScreen)(nil)
var _ screen.EscHandler = (*InterviewScreen)(nil)

// New creates an Interview Mode screen for one note. A non-nil resume
// session skips question generation and continues where it was saved.
func New(service *svc.Service, transcriber audio.Transcriber, eventRepo store.EventRepo, snapshots store.SnapshotRepo, note notes.Note, loc notes.Location, folders notes.FolderNames, resume *study.Session) *InterviewScreen {
	return &InterviewScreen{
		service:     service,
		transcriber: transcriber,
		eventRepo:   eventRepo,
		snapshots:   snapshots,
		note:        note,
		loc:         loc,
		folders:     folders,
		sess:        resume,
		input:       components.NewTextInput("Your answer...", 0),
	}
}

func (s *InterviewScreen) Init() tea.Cmd {
	if s.sess == nil {
		return tea.Batch(s.generateQuestions(), s.input.Init())
	}
	if len(s.sess.History()) == 0 {
		return tea.Batch(s.startAsk(), s.input.Init())
	}
	return s.input.Init()
}

func (s *InterviewScreen) Title() string {
	return "Interview"
}

func (s *InterviewScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	return fmt.Sprintf("%s  %d/%d", s.note.Title, s.sess.CurrentIndex()+1, s.sess.ItemCount())
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End interview"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.audioMode {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Transcribe file"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Answer"},
		{Key: "Ctrl+N/P", Description: "Next/Prev question"},
	}
	if s.transcriber != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+T", Description: "Audio answer"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// HandleEsc routes Esc into the quit-confirm dialog instead of popping.
func (s *InterviewScreen) HandleEsc() (bool, tea.Cmd) {
	if s.audioMode {
		s.audioMode = false
		return true, s.input.Reset()
	}
	if !s.quitConfirm && s.errMsg == "" {
		s.quitConfirm = true
		return true, nil
	}
	return false, nil
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsReadyMsg:
		return s.handleQuestionsReady(msg)
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
	case transcribedMsg:
		return s.handleTranscribed(msg)
	case finalDoneMsg:
		return s.handleFinalDone(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.sess != nil && !s.sess.Busy() && !s.quitConfirm && !s.transcribing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *InterviewScreen) generateQuestions() tea.Cmd {
	note := s.note
	service := s.service
	return func() tea.Msg {
		text, attachment, err := loadNote(note)
		if err != nil {
			return questionsReadyMsg{Err: err}
		}
		items, err := service.GenerateQuestions(context.Background(), note.Title, text, attachment)
		if err != nil {
			return questionsReadyMsg{Err: err}
		}
		return questionsReadyMsg{Items: items}
	}
}

func (s *InterviewScreen) handleQuestionsReady(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.sess = study.NewSession(study.ModeInterview, s.note.RelPath, s.note.Title, msg.Items)

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID: s.sess.ID(),
		Action:    "started",
		Mode:      string(study.ModeInterview),
		NotePath:  s.note.RelPath,
		ItemCount: s.sess.ItemCount(),
	})

	return s, s.startAsk()
}

// startAsk streams the interviewer's delivery of the current question.
func (s *InterviewScreen) startAsk() tea.Cmd {
	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return nil
	}
	s.sess.Current().State = study.StateIntroPending

	item := *s.sess.Current()
	service := s.service
	return func() tea.Msg {
		st, err := service.Ask(context.Background(), item)
		if err != nil {
			return streamFailedMsg{Epoch: epoch, Err: err}
		}
		return streamStartedMsg{Epoch: epoch, Stream: st}
	}
}

func (s *InterviewScreen) handleStreamStarted(msg streamStartedMsg) (screen.Screen, tea.Cmd) {
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

func (s *InterviewScreen) handleStreamFrag(msg streamFragMsg) (screen.Screen, tea.Cmd) {
	if s.sess.Epoch() != msg.Epoch || s.stream == nil {
		return s, nil
	}
	s.partial += msg.Frag
	return s, waitFrag(s.stream, msg.Epoch)
}

func (s *InterviewScreen) handleStreamDone(msg streamDoneMsg) (screen.Screen, tea.Cmd) {
	s.stream = nil
	s.partial = ""
	s.sess.FinishTurn()

	item := s.sess.Current()
	if msg.Text != "" {
		m := study.NewMessage(study.RoleAssistant, msg.Text)
		m.Type = study.TypeIntro
		if s.sess.AcceptMessage(msg.Epoch, m) {
			item.State = study.StateIntroShown
		}
	}
	if msg.Err != nil {
		if s.sess.Epoch() == msg.Epoch {
			s.sess.Append(study.NewNotice("The question delivery was interrupted: " + msg.Err.Error()))
		}
		return s, nil
	}

	if item.State == study.StateIntroShown {
		item.State = study.StateAnswerPending
	}
	return s, nil
}

func (s *InterviewScreen) handleStreamFailed(msg streamFailedMsg) (screen.Screen, tea.Cmd) {
	s.sess.FinishTurn()
	if s.sess.Epoch() == msg.Epoch {
		s.sess.Append(study.NewNotice("The question could not be generated: " + msg.Err.Error()))
	}
	return s, nil
}

// submitAnswer records the answer and runs the evaluator. Answers to an
// already-evaluated question are treated as follow-up conversation only.
func (s *InterviewScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	answer := s.input.Value()
	if answer == "" {
		return s, nil
	}

	s.sess.Append(study.NewMessage(study.RoleUser, answer))
	resetCmd := s.input.Reset()

	if s.sess.Current().Evaluation != nil {
		return s, resetCmd
	}

	epoch, err := s.sess.BeginTurn()
	if err != nil {
		return s, resetCmd
	}

	index := s.sess.CurrentIndex()
	item := *s.sess.Current()
	history := s.sess.History()
	service := s.service
	evalCmd := func() tea.Msg {
		eval, err := service.Evaluate(context.Background(), item, history, answer)
		return evalDoneMsg{Epoch: epoch, Index: index, Eval: eval, Err: err}
	}
	return s, tea.Batch(resetCmd, evalCmd)
}

func (s *InterviewScreen) handleEvalDone(msg evalDoneMsg) (screen.Screen, tea.Cmd) {
	s.sess.FinishTurn()
	if s.sess.Epoch() != msg.Epoch {
		return s, nil
	}

	if msg.Err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(msg.Err, &invalid) {
			s.sess.Append(study.NewNotice("The evaluation could not be read. Your answer is kept; try sending again."))
		} else {
			s.sess.Append(study.NewNotice("The evaluation failed: " + msg.Err.Error()))
		}
		return s, nil
	}

	if err := s.sess.SetEvaluation(msg.Index, *msg.Eval); err != nil {
		return s, nil
	}
	s.sess.Append(study.NewMessage(study.RoleAssistant, msg.Eval.Feedback))

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID: s.sess.ID(),
		Action:    "item_completed",
		Mode:      string(study.ModeInterview),
		ItemIndex: msg.Index,
		Detail:    string(msg.Eval.Score),
	})
	return s, nil
}

// startTranscribe sends the named audio file for transcription.
func (s *InterviewScreen) startTranscribe() (screen.Screen, tea.Cmd) {
	path := s.input.Value()
	if path == "" {
		return s, nil
	}
	s.audioMode = false
	s.transcribing = true

	transcriber := s.transcriber
	resetCmd := s.input.Reset()
	return s, tea.Batch(resetCmd, func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return transcribedMsg{Err: err}
		}
		defer f.Close()
		text, err := transcriber.Transcribe(context.Background(), f, filepath.Base(path))
		return transcribedMsg{Text: text, Err: err}
	})
}

func (s *InterviewScreen) handleTranscribed(msg transcribedMsg) (screen.Screen, tea.Cmd) {
	s.transcribing = false
	if msg.Err != nil {
		s.sess.Append(study.NewNotice("Transcription failed: " + msg.Err.Error()))
		return s, nil
	}
	// The transcript lands in the input for review before submission.
	s.input.Model.SetValue(msg.Text)
	return s, s.input.Init()
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
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
			return s, s.finish("abandoned")
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if s.transcribing || s.finalizing {
		return s, nil
	}

	switch key {
	case "enter":
		if s.audioMode {
			return s.startTranscribe()
		}
		if !s.sess.Busy() {
			return s.submitAnswer()
		}
		return s, nil
	case "ctrl+t":
		if s.transcriber != nil && !s.sess.Busy() {
			s.audioMode = true
			s.input.Model.SetValue("")
			s.input.Model.Placeholder = "Path to audio file..."
			return s, s.input.Init()
		}
		return s, nil
	case "ctrl+n":
		return s.advance()
	case "ctrl+p":
		if err := s.sess.Previous(); err != nil {
			return s, nil
		}
		return s, nil
	}

	if !s.sess.Busy() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *InterviewScreen) advance() (screen.Screen, tea.Cmd) {
	if err := s.sess.Advance(); err != nil {
		return s, nil
	}
	if s.sess.IsComplete() {
		return s, s.finish("completed")
	}
	if len(s.sess.History()) == 0 {
		return s, s.startAsk()
	}
	return s, nil
}

// finish records the terminal event and asks for the overall verdict
// before handing off to the summary screen. An abandoned interview is
// snapshotted first so `study --resume` can pick it back up.
func (s *InterviewScreen) finish(action string) tea.Cmd {
	if action == "abandoned" && s.snapshots != nil {
		_ = store.SaveSessionSnapshot(context.Background(), s.snapshots, s.sess)
	}
	s.sess.Complete()
	s.finalizing = true

	_ = s.eventRepo.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    s.sess.ID(),
		Action:       action,
		Mode:         string(study.ModeInterview),
		NotePath:     s.note.RelPath,
		ItemCount:    s.sess.ItemCount(),
		DurationSecs: int(time.Since(s.sess.CreatedAt()).Seconds()),
	})

	items := s.sess.Items()
	service := s.service
	return func() tea.Msg {
		verdict, err := service.Final(context.Background(), items)
		return finalDoneMsg{Verdict: verdict, Err: err}
	}
}

func (s *InterviewScreen) handleFinalDone(msg finalDoneMsg) (screen.Screen, tea.Cmd) {
	s.finalizing = false

	opts := summary.Options{}
	if msg.Err == nil && msg.Verdict != nil {
		opts.FinalVerdict = msg.Verdict.Verdict
		opts.FinalSummary = msg.Verdict.Summary
	}

	sess := s.sess
	loc := s.loc
	folders := s.folders
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{
			Screen: summary.New(sess, loc, folders, opts),
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
