package study

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a navigation or turn is attempted while a
// generation/evaluation is in flight. Concurrent requests are prevented,
// not queued.
var ErrBusy = errors.New("a generation is in flight")

// ErrComplete is returned when a transition is attempted on a completed
// session. Completed sessions are read-only except for export.
var ErrComplete = errors.New("session is complete")

// ErrIndexOutOfRange reports a jump to an index outside the item list.
type ErrIndexOutOfRange struct {
	Index int
	Count int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("item index %d out of range (0..%d)", e.Index, e.Count-1)
}

// ErrNoSuchSubItem reports a switch to a sub-item the current item does
// not carry.
type ErrNoSuchSubItem struct {
	ID string
}

func (e *ErrNoSuchSubItem) Error() string {
	return fmt.Sprintf("no such sub-item: %q", e.ID)
}

// ErrEvaluationSet reports an attempt to overwrite an item's evaluation.
// Evaluations are immutable once set.
type ErrEvaluationSet struct {
	Index int
}

func (e *ErrEvaluationSet) Error() string {
	return fmt.Sprintf("item %d already has an evaluation", e.Index)
}
