package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/tracker"
)

// ErrSynthesisInFlight is returned when a synthesis is requested while
// another is still running; the caller should treat the tick as
// coalesced, not queue it.
var ErrSynthesisInFlight = errors.New("synthesis already in flight")

// EventCounter supplies per-kind event counts within a window.
type EventCounter interface {
	CountByKind(ctx context.Context, since, until time.Time) (map[event.Kind]int, error)
}

// ClusterSource supplies clusters formed since a point in time.
type ClusterSource interface {
	ListClustersSince(ctx context.Context, since time.Time) ([]dedup.Cluster, error)
}

// NeglectSource supplies the current neglected set, transitioning items
// as a side effect.
type NeglectSource interface {
	ListNeglected(ctx context.Context, now time.Time, thresholdDays int) ([]tracker.TrackedItem, error)
}

// KnowledgeSource supplies the knowledge base size.
type KnowledgeSource interface {
	Size(ctx context.Context) (int, error)
}

// IntelProvider fetches externally gathered repository intelligence.
// Failures degrade the intelligence section, never the whole report.
type IntelProvider interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Sink receives each synthesized report. Delivery mechanics (email,
// webhooks) belong to the collaborator behind this interface.
type Sink interface {
	Deliver(ctx context.Context, rep HealthReport) error
}

// Scheduler runs report synthesis on a fixed interval. The loop is
// cancellable via context and coalescing: a tick that fires while a
// synthesis is still running is skipped, never queued.
type Scheduler struct {
	interval    time.Duration
	neglectDays int

	events    EventCounter
	clusters  ClusterSource
	neglect   NeglectSource
	knowledge KnowledgeSource
	intel     IntelProvider
	sink      Sink
	logger    *slog.Logger

	inFlight sync.Mutex
	now      func() time.Time
}

// SchedulerConfig wires a Scheduler.
type SchedulerConfig struct {
	Interval    time.Duration
	NeglectDays int
	Events      EventCounter
	Clusters    ClusterSource
	Neglect     NeglectSource
	Knowledge   KnowledgeSource
	Intel       IntelProvider // optional
	Sink        Sink
	Logger      *slog.Logger
}

// NewScheduler creates a report scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval:    cfg.Interval,
		neglectDays: cfg.NeglectDays,
		events:      cfg.Events,
		clusters:    cfg.Clusters,
		neglect:     cfg.Neglect,
		knowledge:   cfg.Knowledge,
		intel:       cfg.Intel,
		sink:        cfg.Sink,
		logger:      logger,
		now:         time.Now,
	}
}

// Run blocks until ctx is cancelled, synthesizing a report every
// interval. Cancellation stops future wake-ups without interrupting an
// in-flight synthesis. Per-tick failures are logged and the loop keeps
// going.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("report scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("report scheduler stopped")
			return nil
		case <-ticker.C:
			// Detach from ctx so cancellation during synthesis lets
			// the current run finish.
			if _, err := s.RunOnce(context.WithoutCancel(ctx)); err != nil {
				if errors.Is(err, ErrSynthesisInFlight) {
					s.logger.Warn("synthesis tick coalesced, previous run still in flight")
					continue
				}
				s.logger.Error("report synthesis failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single synthesis over the trailing window and
// delivers it to the sink. Only one synthesis runs at a time.
func (s *Scheduler) RunOnce(ctx context.Context) (*HealthReport, error) {
	if !s.inFlight.TryLock() {
		return nil, ErrSynthesisInFlight
	}
	defer s.inFlight.Unlock()

	now := s.now()
	window := Window{Start: now.Add(-s.interval), End: now}

	counts, err := s.events.CountByKind(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	clusters, err := s.clusters.ListClustersSince(ctx, window.Start)
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}
	neglected, err := s.neglect.ListNeglected(ctx, now, s.neglectDays)
	if err != nil {
		return nil, fmt.Errorf("listing neglected items: %w", err)
	}
	knowledgeSize, err := s.knowledge.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("sizing knowledge base: %w", err)
	}

	in := Inputs{
		Window:        window,
		EventCounts:   counts,
		NewClusters:   clusters,
		Neglected:     neglected,
		KnowledgeSize: knowledgeSize,
	}
	if s.intel == nil {
		in.IntelErr = errors.New("no intelligence source configured")
	} else if signals, err := s.intel.Fetch(ctx); err != nil {
		s.logger.Warn("intelligence fetch failed, report will be partial", "error", err)
		in.IntelErr = err
	} else {
		in.Intel = signals
	}

	rep := Synthesize(now, in)
	if s.sink != nil {
		if err := s.sink.Deliver(ctx, rep); err != nil {
			return nil, fmt.Errorf("delivering report: %w", err)
		}
	}
	s.logger.Info("health report synthesized",
		"window_start", window.Start, "window_end", window.End,
		"neglected", len(rep.Neglected), "new_clusters", len(rep.NewClusters))
	return &rep, nil
}
