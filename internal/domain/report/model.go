package report

import (
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/tracker"
)

// Window is the half-open time range [Start, End) a report covers.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IntelSection carries externally supplied intelligence verbatim. When
// the collaborator was unavailable the section is marked so and the
// rest of the report stands on its own.
type IntelSection struct {
	Available bool     `json:"available"`
	Signals   []string `json:"signals,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// HealthReport is an immutable aggregation of tracked state over a
// window. Each synthesis produces a fresh report; none is ever mutated.
type HealthReport struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	Window        Window             `json:"window"`
	EventCounts   map[event.Kind]int `json:"event_counts"`
	NewClusters   []dedup.Cluster    `json:"new_clusters,omitempty"`
	Neglected     []tracker.TrackedItem `json:"neglected,omitempty"`
	KnowledgeSize int                `json:"knowledge_size"`
	Intelligence  IntelSection       `json:"intelligence"`
	ActionItems   []string           `json:"action_items,omitempty"`
}
