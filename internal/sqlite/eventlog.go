package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mgreer/custodian/internal/domain/event"
)

// EventLogRepository implements the dispatcher's audit log and the
// report scheduler's event counter over the same table.
type EventLogRepository struct {
	db *DB
}

// NewEventLogRepository creates a new EventLogRepository
func NewEventLogRepository(db *DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// Log inserts a new audit entry
func (r *EventLogRepository) Log(ctx context.Context, entry *event.LogEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO event_log (sender, subject, kind, number, action, received_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Sender,
		entry.Subject,
		string(entry.Kind),
		entry.Number,
		entry.Action,
		entry.ReceivedAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt
	return nil
}

// List returns the most recent entries, newest first
func (r *EventLogRepository) List(ctx context.Context, limit int) ([]event.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender, subject, kind, number, action, received_at, created_at
		FROM event_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list event log: %w", err)
	}
	defer rows.Close()

	var entries []event.LogEntry
	for rows.Next() {
		var entry event.LogEntry
		var kind string
		err := rows.Scan(
			&entry.ID,
			&entry.Sender,
			&entry.Subject,
			&kind,
			&entry.Number,
			&entry.Action,
			&entry.ReceivedAt,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event log entry: %w", err)
		}
		entry.Kind = event.Kind(kind)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event log rows: %w", err)
	}
	return entries, nil
}

// CountByKind counts events received within [since, until)
func (r *EventLogRepository) CountByKind(ctx context.Context, since, until time.Time) (map[event.Kind]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM event_log
		WHERE received_at >= ? AND received_at < ?
		GROUP BY kind
	`, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[event.Kind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[event.Kind(kind)] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event count rows: %w", err)
	}
	return counts, nil
}
