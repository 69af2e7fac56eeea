// Package study holds the interactive session state shared by the study
// modes: the item list, the cursor, per-item (and per-sub-item) message
// histories, and the transition rules that keep them consistent.
package study

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects which study mode a session runs.
type Mode string

const (
	ModeLearning  Mode = "learning"
	ModeInterview Mode = "interview"
	ModePair      Mode = "pair"
)

// Role is the author of a message. Each mode maps the two parties onto
// these roles (tutor/student, interviewer/candidate, navigator/driver).
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType discriminates message presentation.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeIntro    MessageType = "intro"
	TypeHint     MessageType = "hint"
	TypeSolution MessageType = "solution"

	// TypeNotice marks inline error/status markers (failed generation,
	// malformed evaluation). Notices are visible but never sent back to
	// the model as conversation turns.
	TypeNotice MessageType = "notice"
)

// Message is one turn in a dialog. Append-only; never mutated after
// creation.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`

	// SuggestedCode is the pair-programming side channel: code the
	// assistant proposes alongside its reply.
	SuggestedCode string `json:"suggested_code,omitempty"`
}

// NewMessage creates a text message.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Type:      TypeText,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewNotice creates an inline notice marker.
func NewNotice(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Type:      TypeNotice,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// ItemState is the per-item progression state.
type ItemState string

const (
	StateUninitialized ItemState = "uninitialized"
	StateIntroPending  ItemState = "intro_pending"
	StateIntroShown    ItemState = "intro_shown"
	StateAnswerPending ItemState = "answer_pending"
	StateFeedbackShown ItemState = "feedback_shown"
	StateAnswered      ItemState = "answered"
)

// SubItem is a secondary focus within an item (a practice problem within a
// learning concept). Each sub-item carries its own isolated history.
type SubItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Item is one unit of session progression: an interview question, a
// learning concept, or a pair-programming challenge. Title, Body, Category
// and Difficulty are fixed at creation; the rest is progress state.
type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	State        ItemState   `json:"state"`
	Completed    bool        `json:"completed"`
	SupportLevel int         `json:"support_level,omitempty"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
	SubItems     []SubItem   `json:"sub_items,omitempty"`
	ActiveSub    string      `json:"active_sub,omitempty"`
}

// Score is the overall interview verdict for one answer.
type Score string

const (
	ScoreStrongHire Score = "strong_hire"
	ScoreHire       Score = "hire"
	ScoreMixed      Score = "mixed"
	ScoreNoHire     Score = "no_hire"
)

// Dimension is one scored axis of an interview evaluation, 0-4.
type Dimension struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Evaluation is the structured verdict for one interview answer.
// Produced once per item; immutable thereafter.
type Evaluation struct {
	Score        Score       `json:"score"`
	Dimensions   []Dimension `json:"dimensions"`
	Feedback     string      `json:"feedback"`
	Strengths    []string    `json:"strengths,omitempty"`
	Improvements []string    `json:"improvements,omitempty"`
}
