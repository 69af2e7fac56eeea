package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match (empty = all)
}

// SnapshotVersion is the current snapshot schema version. Bump it when
// the serialized session shape changes incompatibly.
const SnapshotVersion = 1

// snapshotKeep bounds how many snapshots survive a save.
const snapshotKeep = 10

// SnapshotData captures a resumable study session at a point in time.
// Session holds the serialized session state; the study package owns its
// shape and version compatibility.
type SnapshotData struct {
	Version int             `json:"version"`
	Session json.RawMessage `json:"session"`
}

// Snapshot represents a point-in-time capture of an in-progress session.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages session snapshots for resume-after-quit.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// SaveSession stores data as the newest snapshot, assigning the next
	// global sequence.
	SaveSession(ctx context.Context, data SnapshotData) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// SaveSessionSnapshot serializes sess and stores it as the newest
// snapshot, pruning older ones. Called when a session is left unfinished
// so `study --resume` can pick it back up.
func SaveSessionSnapshot(ctx context.Context, repo SnapshotRepo, sess json.Marshaler) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := repo.SaveSession(ctx, SnapshotData{Version: SnapshotVersion, Session: raw}); err != nil {
		return err
	}
	return repo.Prune(ctx, snapshotKeep)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request with its assigned sequence.
type LLMEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// SessionEventData captures a study session lifecycle event.
// Action is one of: started, item_completed, completed, abandoned.
type SessionEventData struct {
	SessionID    string
	Action       string
	Mode         string
	NotePath     string
	ItemIndex    int
	ItemCount    int
	DurationSecs int
	Detail       string
}

// UsageRow aggregates token usage grouped by one dimension.
type UsageRow struct {
	Key          string
	Requests     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// SessionSummary is one study session reconstructed from its lifecycle
// events. Outcome is the final action recorded: "completed", "abandoned",
// or "started" for a session that never ended cleanly.
type SessionSummary struct {
	SessionID    string
	Mode         string
	NotePath     string
	StartedAt    time.Time
	Outcome      string
	ItemCount    int
	ItemsDone    int
	DurationSecs int
}

// SessionStats summarizes recorded study activity.
type SessionStats struct {
	TotalSessions     int
	CompletedSessions int
	SessionsByMode    map[string]int
	ItemsCompleted    int
	TotalDurationSecs int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendSessionEvent records a study session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// ListLLMEvents returns LLM events matching opts, newest first.
	ListLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one LLM event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// UsageByPurpose aggregates token usage grouped by purpose label.
	UsageByPurpose(ctx context.Context) ([]UsageRow, error)

	// UsageByModel aggregates token usage grouped by model ID.
	UsageByModel(ctx context.Context) ([]UsageRow, error)

	// ListSessions returns per-session summaries, newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)

	// Stats summarizes recorded study sessions.
	Stats(ctx context.Context) (*SessionStats, error)
}
