package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mgreer/custodian/internal/domain/tracker"
	"github.com/mgreer/custodian/internal/repository"
)

// TrackedItemRepository implements tracker.Repository for SQLite
type TrackedItemRepository struct {
	db *DB
}

// NewTrackedItemRepository creates a new TrackedItemRepository
func NewTrackedItemRepository(db *DB) *TrackedItemRepository {
	return &TrackedItemRepository{db: db}
}

// Get retrieves a tracked item by number
func (r *TrackedItemRepository) Get(ctx context.Context, number int) (*tracker.TrackedItem, error) {
	var item tracker.TrackedItem
	err := r.db.QueryRowContext(ctx, `
		SELECT number, author, repo, state, opened_at, last_activity
		FROM tracked_items WHERE number = ?
	`, number).Scan(
		&item.Number,
		&item.Author,
		&item.Repo,
		&item.State,
		&item.OpenedAt,
		&item.LastActivity,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked item: %w", err)
	}
	return &item, nil
}

// Put inserts or replaces a tracked item
func (r *TrackedItemRepository) Put(ctx context.Context, item *tracker.TrackedItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracked_items (number, author, repo, state, opened_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			author = excluded.author,
			repo = excluded.repo,
			state = excluded.state,
			last_activity = excluded.last_activity
	`,
		item.Number,
		item.Author,
		item.Repo,
		string(item.State),
		item.OpenedAt,
		item.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("failed to save tracked item: %w", err)
	}
	return nil
}

// ListUnresolved returns all items not yet resolved
func (r *TrackedItemRepository) ListUnresolved(ctx context.Context) ([]tracker.TrackedItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, author, repo, state, opened_at, last_activity
		FROM tracked_items
		WHERE state != 'resolved'
		ORDER BY last_activity ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked items: %w", err)
	}
	defer rows.Close()

	var items []tracker.TrackedItem
	for rows.Next() {
		var item tracker.TrackedItem
		err := rows.Scan(
			&item.Number,
			&item.Author,
			&item.Repo,
			&item.State,
			&item.OpenedAt,
			&item.LastActivity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked item rows: %w", err)
	}
	return items, nil
}
