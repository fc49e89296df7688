package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/repository"
)

// IssueRepository implements dedup.Repository for SQLite
type IssueRepository struct {
	db *DB
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// CreateEntry inserts a new issue entry
func (r *IssueRepository) CreateEntry(ctx context.Context, entry *dedup.IssueEntry) error {
	files, err := marshalTokens(entry.Record.Files)
	if err != nil {
		return err
	}
	functions, err := marshalTokens(entry.Record.Functions)
	if err != nil {
		return err
	}
	errorTerms, err := marshalTokens(entry.Record.ErrorTerms)
	if err != nil {
		return err
	}
	words, err := marshalTokens(entry.Record.Words)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO issue_entries (
			id, kind, number, author, repo, title,
			files, functions, error_terms, words, cluster_id, first_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Record.Kind),
		entry.Record.Number,
		entry.Record.Author,
		entry.Record.Repo,
		entry.Record.Title,
		files,
		functions,
		errorTerms,
		words,
		entry.ClusterID,
		entry.FirstSeen,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create issue entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID
func (r *IssueRepository) GetEntry(ctx context.Context, id string) (*dedup.IssueEntry, error) {
	query := entrySelect + ` WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue entry: %w", err)
	}
	return entry, nil
}

// ListByKind returns all entries of the given kind, first-seen ascending
func (r *IssueRepository) ListByKind(ctx context.Context, kind string) ([]dedup.IssueEntry, error) {
	query := entrySelect + ` WHERE kind = ? ORDER BY first_seen ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue entries: %w", err)
	}
	defer rows.Close()

	var entries []dedup.IssueEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue entry rows: %w", err)
	}
	return entries, nil
}

// AssignCluster attaches an existing entry to a cluster
func (r *IssueRepository) AssignCluster(ctx context.Context, entryID, clusterID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE issue_entries SET cluster_id = ? WHERE id = ?`, clusterID, entryID)
	if err != nil {
		return fmt.Errorf("failed to assign cluster: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateCluster inserts a new cluster
func (r *IssueRepository) CreateCluster(ctx context.Context, cluster *dedup.Cluster) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clusters (id, representative_id, size, created_at) VALUES (?, ?, ?, ?)`,
		cluster.ID, cluster.RepresentativeID, cluster.Size, cluster.CreatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create cluster: %w", err)
	}
	return nil
}

// GetCluster retrieves a cluster by ID
func (r *IssueRepository) GetCluster(ctx context.Context, id string) (*dedup.Cluster, error) {
	var cluster dedup.Cluster
	err := r.db.QueryRowContext(ctx,
		`SELECT id, representative_id, size, created_at FROM clusters WHERE id = ?`, id).
		Scan(&cluster.ID, &cluster.RepresentativeID, &cluster.Size, &cluster.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}
	return &cluster, nil
}

// IncrementClusterSize bumps a cluster's member count
func (r *IssueRepository) IncrementClusterSize(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clusters SET size = size + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to update cluster size: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListClustersSince returns clusters created at or after the given time
func (r *IssueRepository) ListClustersSince(ctx context.Context, since time.Time) ([]dedup.Cluster, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, representative_id, size, created_at FROM clusters WHERE created_at >= ? ORDER BY created_at ASC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []dedup.Cluster
	for rows.Next() {
		var cluster dedup.Cluster
		if err := rows.Scan(&cluster.ID, &cluster.RepresentativeID, &cluster.Size, &cluster.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		clusters = append(clusters, cluster)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cluster rows: %w", err)
	}
	return clusters, nil
}

const entrySelect = `
	SELECT id, kind, number, author, repo, title,
	       files, functions, error_terms, words, cluster_id, first_seen
	FROM issue_entries
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*dedup.IssueEntry, error) {
	var (
		entry      dedup.IssueEntry
		kind       string
		files      string
		functions  string
		errorTerms string
		words      string
	)
	err := row.Scan(
		&entry.ID,
		&kind,
		&entry.Record.Number,
		&entry.Record.Author,
		&entry.Record.Repo,
		&entry.Record.Title,
		&files,
		&functions,
		&errorTerms,
		&words,
		&entry.ClusterID,
		&entry.FirstSeen,
	)
	if err != nil {
		return nil, err
	}

	entry.Record.Kind = event.Kind(kind)
	entry.Record.ReceivedAt = entry.FirstSeen
	if entry.Record.Files, err = unmarshalTokens(files); err != nil {
		return nil, err
	}
	if entry.Record.Functions, err = unmarshalTokens(functions); err != nil {
		return nil, err
	}
	if entry.Record.ErrorTerms, err = unmarshalTokens(errorTerms); err != nil {
		return nil, err
	}
	if entry.Record.Words, err = unmarshalTokens(words); err != nil {
		return nil, err
	}
	return &entry, nil
}
