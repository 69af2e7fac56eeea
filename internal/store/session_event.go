package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, timestamp, session_id, action, mode, note_path,
		 item_index, item_count, duration_secs, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.SessionID, data.Action, data.Mode,
		data.NotePath, data.ItemIndex, data.ItemCount, data.DurationSecs,
		data.Detail,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	q := `SELECT s.session_id, s.mode, s.note_path, s.timestamp, s.item_count,
		(SELECT COUNT(*) FROM session_events e
		 WHERE e.session_id = s.session_id AND e.action = 'item_completed'),
		COALESCE((SELECT e.action FROM session_events e
		 WHERE e.session_id = s.session_id AND e.action IN ('completed', 'abandoned')
		 ORDER BY e.sequence DESC LIMIT 1), 'started'),
		COALESCE((SELECT e.duration_secs FROM session_events e
		 WHERE e.session_id = s.session_id AND e.action IN ('completed', 'abandoned')
		 ORDER BY e.sequence DESC LIMIT 1), 0)
		FROM session_events s WHERE s.action = 'started'
		ORDER BY s.sequence DESC`
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		err := rows.Scan(&s.SessionID, &s.Mode, &s.NotePath, &s.StartedAt,
			&s.ItemCount, &s.ItemsDone, &s.Outcome, &s.DurationSecs)
		if err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *eventRepo) Stats(ctx context.Context) (*SessionStats, error) {
	stats := &SessionStats{SessionsByMode: make(map[string]int)}

	rows, err := r.db.QueryContext(ctx, `SELECT mode, COUNT(DISTINCT session_id)
		FROM session_events WHERE action = 'started' GROUP BY mode`)
	if err != nil {
		return nil, fmt.Errorf("query sessions by mode: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("scan mode count: %w", err)
		}
		stats.SessionsByMode[mode] = n
		stats.TotalSessions += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id),
		COALESCE(SUM(duration_secs), 0)
		FROM session_events WHERE action = 'completed'`).
		Scan(&stats.CompletedSessions, &stats.TotalDurationSecs)
	if err != nil {
		return nil, fmt.Errorf("query completed sessions: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_events WHERE action = 'item_completed'`).
		Scan(&stats.ItemsCompleted)
	if err != nil {
		return nil, fmt.Errorf("query items completed: %w", err)
	}

	return stats, nil
}
