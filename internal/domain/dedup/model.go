package dedup

import (
	"time"

	"github.com/mgreer/custodian/internal/domain/event"
)

// IssueEntry is a stored issue report. ClusterID is nil until the entry
// is grouped with at least one duplicate.
type IssueEntry struct {
	ID        string             `json:"id"`
	Record    event.ParsedRecord `json:"record"`
	ClusterID *string            `json:"cluster_id,omitempty"`
	FirstSeen time.Time          `json:"first_seen"`
}

// Cluster groups entries judged duplicates of one another. The
// representative is always the member with the earliest first-seen
// timestamp.
type Cluster struct {
	ID               string    `json:"id"`
	RepresentativeID string    `json:"representative_id"`
	Size             int       `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}

// InsertResult describes the outcome of registering an issue report.
type InsertResult struct {
	Entry          *IssueEntry `json:"entry"`
	Duplicate      bool        `json:"duplicate"`
	Representative *IssueEntry `json:"representative,omitempty"`
	ClusterSize    int         `json:"cluster_size,omitempty"`
	Score          float64     `json:"score,omitempty"`
}
