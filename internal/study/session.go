package study

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Session is the canonical in-memory state of one study run. Item and
// sub-item histories live in a flat map keyed by (item index, sub-item id)
// so the snapshot/restore invariant is mechanically checkable: the visible
// history always equals exactly the stored history for the active pair.
//
// Session is not safe for concurrent use; the TUI event loop owns it.
// Asynchronous results re-enter through AcceptMessage with the epoch they
// captured at issue time.
type Session struct {
	id        string
	mode      Mode
	notePath  string
	noteTitle string
	createdAt time.Time

	items      []Item
	current    int
	visible    []Message
	histories  map[string][]Message
	complete   bool
	maxSupport int

	busy  bool
	epoch uint64
}

// Option configures session construction.
type Option func(*Session)

// WithMaxSupport caps the Learning Mode support ratchet.
func WithMaxSupport(max int) Option {
	return func(s *Session) { s.maxSupport = max }
}

// NewSession creates a session over a fixed item list. The item list is
// fixed at creation; the cursor starts at 0.
func NewSession(mode Mode, notePath, noteTitle string, items []Item, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		mode:       mode,
		notePath:   notePath,
		noteTitle:  noteTitle,
		createdAt:  time.Now(),
		items:      make([]Item, len(items)),
		histories:  make(map[string][]Message),
		maxSupport: 4,
	}
	copy(s.items, items)
	for i := range s.items {
		if s.items[i].ID == "" {
			s.items[i].ID = uuid.NewString()
		}
		if s.items[i].State == "" {
			s.items[i].State = StateUninitialized
		}
		if mode == ModeLearning && s.items[i].SupportLevel == 0 {
			s.items[i].SupportLevel = 1
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) NotePath() string     { return s.notePath }
func (s *Session) NoteTitle() string    { return s.noteTitle }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) CurrentIndex() int    { return s.current }
func (s *Session) ItemCount() int       { return len(s.items) }
func (s *Session) IsComplete() bool     { return s.complete }

// Current returns a pointer to the active item. The pointer stays valid
// for the session's lifetime; mutate progress state through it only from
// the owning event loop.
func (s *Session) Current() *Item {
	return &s.items[s.current]
}

// Item returns a pointer to the item at index, or nil if out of range.
func (s *Session) Item(index int) *Item {
	if index < 0 || index >= len(s.items) {
		return nil
	}
	return &s.items[index]
}

// Items returns a copy of the item list.
func (s *Session) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// History returns a copy of the visible history for the active
// (item, sub-item) pair.
func (s *Session) History() []Message {
	out := make([]Message, len(s.visible))
	copy(out, s.visible)
	return out
}

// StoredHistory returns a copy of the saved history for an arbitrary
// (item, sub-item) pair. Used by the transcript renderer and the
// pre-fetcher; it never touches the visible history.
func (s *Session) StoredHistory(index int, subID string) []Message {
	if index == s.current && subID == s.items[s.current].ActiveSub {
		return s.History()
	}
	stored := s.histories[histKey(index, subID)]
	out := make([]Message, len(stored))
	copy(out, stored)
	return out
}

// Append adds a message to the visible history. Synchronous path: the
// caller is the event loop acting on the active pair.
func (s *Session) Append(msg Message) {
	s.visible = append(s.visible, msg)
}

// AcceptMessage appends a message carrying the epoch captured when its
// generation was issued. A stale epoch means the user has navigated since;
// the result is discarded and false is returned.
func (s *Session) AcceptMessage(epoch uint64, msg Message) bool {
	if epoch != s.epoch {
		return false
	}
	s.visible = append(s.visible, msg)
	return true
}

// Epoch returns the current generation epoch. It changes on every
// navigation transition.
func (s *Session) Epoch() uint64 { return s.epoch }

// Busy reports whether a generation/evaluation is in flight.
func (s *Session) Busy() bool { return s.busy }

// BeginTurn marks a generation/evaluation as in flight and returns the
// epoch async results must carry. Fails when one is already outstanding.
func (s *Session) BeginTurn() (uint64, error) {
	if s.busy {
		return 0, ErrBusy
	}
	s.busy = true
	return s.epoch, nil
}

// FinishTurn settles the in-flight generation, success or error.
func (s *Session) FinishTurn() {
	s.busy = false
}

// Advance moves the cursor to the next item, snapshotting the outgoing
// pair first. Advancing past the last item completes the session; once
// complete, the flag never reverts.
func (s *Session) Advance() error {
	if err := s.checkTransition(); err != nil {
		return err
	}
	if s.current == len(s.items)-1 {
		s.snapshot()
		s.complete = true
		s.epoch++
		return nil
	}
	return s.moveTo(s.current + 1)
}

// Previous moves the cursor back one item.
func (s *Session) Previous() error {
	if err := s.checkTransition(); err != nil {
		return err
	}
	if s.current == 0 {
		return nil
	}
	return s.moveTo(s.current - 1)
}

// SwitchItem jumps to an arbitrary item. Jumping to the current index is
// a guarded no-op.
func (s *Session) SwitchItem(index int) error {
	if err := s.checkTransition(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.items) {
		return &ErrIndexOutOfRange{Index: index, Count: len(s.items)}
	}
	if index == s.current {
		return nil
	}
	return s.moveTo(index)
}

// SwitchSubItem activates a sub-item of the current item, snapshotting the
// outgoing history and restoring the incoming one. subID "" returns to the
// item's main thread. The returned fresh flag is true when the incoming
// pair has no prior history, signalling the caller to seed it and issue a
// generation.
func (s *Session) SwitchSubItem(subID string) (fresh bool, err error) {
	if err := s.checkTransition(); err != nil {
		return false, err
	}
	item := &s.items[s.current]
	if subID != "" && !hasSubItem(item, subID) {
		return false, &ErrNoSuchSubItem{ID: subID}
	}
	if subID == item.ActiveSub {
		return false, nil
	}

	s.snapshot()
	item.ActiveSub = subID
	s.restore()
	s.epoch++
	return len(s.visible) == 0, nil
}

// SeedPrefetched merges a pre-generated history into an item that has
// none yet. It reports whether the merge happened and whether the merged
// item is the one currently on screen (so the caller knows to repaint).
func (s *Session) SeedPrefetched(index int, msgs []Message) (merged, live bool) {
	if index < 0 || index >= len(s.items) || len(msgs) == 0 {
		return false, false
	}

	if index == s.current && s.items[s.current].ActiveSub == "" {
		if len(s.visible) > 0 {
			return false, false
		}
		s.visible = append(s.visible, msgs...)
		return true, true
	}

	key := histKey(index, "")
	if len(s.histories[key]) > 0 {
		return false, false
	}
	stored := make([]Message, len(msgs))
	copy(stored, msgs)
	s.histories[key] = stored
	return true, false
}

// SetEvaluation records the structured verdict for an item and marks it
// answered. Evaluations are immutable: a second call is an error.
func (s *Session) SetEvaluation(index int, eval Evaluation) error {
	item := s.Item(index)
	if item == nil {
		return &ErrIndexOutOfRange{Index: index, Count: len(s.items)}
	}
	if item.Evaluation != nil {
		return &ErrEvaluationSet{Index: index}
	}
	item.Evaluation = &eval
	item.Completed = true
	item.State = StateAnswered
	return nil
}

// MarkCompleted marks an item answered without a structured evaluation
// (Learning Mode advance verdicts, pair challenges).
func (s *Session) MarkCompleted(index int) {
	if item := s.Item(index); item != nil {
		item.Completed = true
		item.State = StateAnswered
	}
}

// IncreaseSupport raises the Learning Mode support ratchet for an item,
// capped at the configured maximum. The ratchet never decreases.
func (s *Session) IncreaseSupport(index int) int {
	item := s.Item(index)
	if item == nil {
		return 0
	}
	if item.SupportLevel < s.maxSupport {
		item.SupportLevel++
	}
	return item.SupportLevel
}

// Complete marks the session finished. Idempotent and sticky.
func (s *Session) Complete() {
	s.snapshot()
	s.complete = true
}

func (s *Session) checkTransition() error {
	if s.busy {
		return ErrBusy
	}
	if s.complete {
		return ErrComplete
	}
	return nil
}

// moveTo applies the snapshot-then-restore discipline: write the outgoing
// pair's history before the cursor moves, read the incoming pair's
// immediately after.
func (s *Session) moveTo(index int) error {
	s.snapshot()
	s.current = index
	s.restore()
	s.epoch++
	return nil
}

func (s *Session) snapshot() {
	stored := make([]Message, len(s.visible))
	copy(stored, s.visible)
	s.histories[s.activeKey()] = stored
}

func (s *Session) restore() {
	stored := s.histories[s.activeKey()]
	s.visible = make([]Message, len(stored))
	copy(s.visible, stored)
}

func (s *Session) activeKey() string {
	return histKey(s.current, s.items[s.current].ActiveSub)
}

func histKey(index int, subID string) string {
	if subID == "" {
		return strconv.Itoa(index)
	}
	return strconv.Itoa(index) + "/" + subID
}

func hasSubItem(item *Item, id string) bool {
	for _, sub := range item.SubItems {
		if sub.ID == id {
			return true
		}
	}
	return false
}
