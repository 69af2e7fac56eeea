package study

import (
	"encoding/json"
	"fmt"
	"time"
)

// sessionJSON is the serialized shape of a Session. The busy flag and
// epoch are runtime-only and deliberately absent: a restored session
// starts settled.
type sessionJSON struct {
	ID         string               `json:"id"`
	Mode       Mode                 `json:"mode"`
	NotePath   string               `json:"note_path"`
	NoteTitle  string               `json:"note_title"`
	CreatedAt  time.Time            `json:"created_at"`
	Items      []Item               `json:"items"`
	Current    int                  `json:"current"`
	Visible    []Message            `json:"visible"`
	Histories  map[string][]Message `json:"histories"`
	Complete   bool                 `json:"complete"`
	MaxSupport int                  `json:"max_support"`
}

// MarshalJSON serializes the session for snapshots.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		ID:         s.id,
		Mode:       s.mode,
		NotePath:   s.notePath,
		NoteTitle:  s.noteTitle,
		CreatedAt:  s.createdAt,
		Items:      s.items,
		Current:    s.current,
		Visible:    s.visible,
		Histories:  s.histories,
		Complete:   s.complete,
		MaxSupport: s.maxSupport,
	})
}

// UnmarshalJSON restores a serialized session.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal session: %w", err)
	}
	if raw.Current < 0 || (len(raw.Items) > 0 && raw.Current >= len(raw.Items)) {
		return fmt.Errorf("restored cursor %d out of range", raw.Current)
	}

	s.id = raw.ID
	s.mode = raw.Mode
	s.notePath = raw.NotePath
	s.noteTitle = raw.NoteTitle
	s.createdAt = raw.CreatedAt
	s.items = raw.Items
	s.current = raw.Current
	s.visible = raw.Visible
	s.histories = raw.Histories
	s.complete = raw.Complete
	s.maxSupport = raw.MaxSupport
	if s.histories == nil {
		s.histories = make(map[string][]Message)
	}
	if s.maxSupport == 0 {
		s.maxSupport = 4
	}
	s.busy = false
	s.epoch = 0
	return nil
}

// Restore rebuilds a Session from its serialized form.
func Restore(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
