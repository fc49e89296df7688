package sqlite

import (
	"context"
	"fmt"

	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/repository"
)

// FAQRepository implements knowledge.Repository for SQLite
type FAQRepository struct {
	db *DB
}

// NewFAQRepository creates a new FAQRepository
func NewFAQRepository(db *DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// Create inserts a new FAQ entry
func (r *FAQRepository) Create(ctx context.Context, entry *knowledge.FAQEntry) error {
	fingerprint, err := marshalTokens(entry.Fingerprint)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO faq_entries (id, question, fingerprint, answer, use_count, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Question,
		fingerprint,
		entry.Answer,
		entry.UseCount,
		entry.CreatedAt,
		entry.LastUsed,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create faq entry: %w", err)
	}
	return nil
}

// Update rewrites an entry's answer, usage counter, and last-used time
func (r *FAQRepository) Update(ctx context.Context, entry *knowledge.FAQEntry) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE faq_entries SET answer = ?, use_count = ?, last_used = ? WHERE id = ?`,
		entry.Answer, entry.UseCount, entry.LastUsed, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update faq entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return knowledge.ErrEntryNotFound
	}
	return nil
}

// List returns all FAQ entries
func (r *FAQRepository) List(ctx context.Context) ([]knowledge.FAQEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, fingerprint, answer, use_count, created_at, last_used
		FROM faq_entries
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list faq entries: %w", err)
	}
	defer rows.Close()

	var entries []knowledge.FAQEntry
	for rows.Next() {
		var entry knowledge.FAQEntry
		var fingerprint string
		err := rows.Scan(
			&entry.ID,
			&entry.Question,
			&fingerprint,
			&entry.Answer,
			&entry.UseCount,
			&entry.CreatedAt,
			&entry.LastUsed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faq entry: %w", err)
		}
		if entry.Fingerprint, err = unmarshalTokens(fingerprint); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating faq rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries
func (r *FAQRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faq_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count faq entries: %w", err)
	}
	return count, nil
}
