package dedup

import (
	"context"
	"time"
)

// Repository persists issue entries and clusters.
type Repository interface {
	CreateEntry(ctx context.Context, entry *IssueEntry) error
	GetEntry(ctx context.Context, id string) (*IssueEntry, error)
	// ListByKind returns all entries of the given kind ordered by
	// first-seen ascending, which the insert scan relies on for its
	// earliest-entry tie-break.
	ListByKind(ctx context.Context, kind string) ([]IssueEntry, error)
	AssignCluster(ctx context.Context, entryID, clusterID string) error
	CreateCluster(ctx context.Context, cluster *Cluster) error
	GetCluster(ctx context.Context, id string) (*Cluster, error)
	IncrementClusterSize(ctx context.Context, id string) error
	ListClustersSince(ctx context.Context, since time.Time) ([]Cluster, error)
}
