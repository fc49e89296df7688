package report

import (
	"fmt"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/tracker"
)

// Inputs are the snapshots a synthesis aggregates. Synthesize never
// mutates them.
type Inputs struct {
	Window        Window
	EventCounts   map[event.Kind]int
	NewClusters   []dedup.Cluster
	Neglected     []tracker.TrackedItem
	KnowledgeSize int
	Intel         []string
	IntelErr      error
}

// Synthesize builds a health report from the given snapshots. Action
// items follow fixed rules; external intelligence is folded in without
// interpretation, and an intelligence failure yields a partial report
// rather than no report.
func Synthesize(now time.Time, in Inputs) HealthReport {
	counts := make(map[event.Kind]int, len(in.EventCounts))
	for k, v := range in.EventCounts {
		counts[k] = v
	}

	rep := HealthReport{
		GeneratedAt:   now,
		Window:        in.Window,
		EventCounts:   counts,
		NewClusters:   append([]dedup.Cluster(nil), in.NewClusters...),
		Neglected:     append([]tracker.TrackedItem(nil), in.Neglected...),
		KnowledgeSize: in.KnowledgeSize,
	}

	switch {
	case in.IntelErr != nil:
		rep.Intelligence = IntelSection{Note: "intelligence source unavailable: " + in.IntelErr.Error()}
	default:
		rep.Intelligence = IntelSection{
			Available: true,
			Signals:   append([]string(nil), in.Intel...),
		}
	}

	if n := len(rep.Neglected); n > 0 {
		rep.ActionItems = append(rep.ActionItems,
			fmt.Sprintf("%d neglected pull requests need attention", n))
	}
	if n := len(rep.NewClusters); n > 0 {
		rep.ActionItems = append(rep.ActionItems,
			fmt.Sprintf("%d new duplicate clusters formed", n))
	}
	if n := len(rep.Intelligence.Signals); n > 0 {
		rep.ActionItems = append(rep.ActionItems,
			fmt.Sprintf("%d external advisories to review", n))
	}

	return rep
}
