package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/similarity"
)

// Service is the duplicate registry. Inserts are serialized by a mutex
// so that two racing near-duplicates resolve into one cluster with a
// definitive origin; scoring itself runs outside any storage write.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	scorer    *similarity.Scorer
	threshold float64
	logger    *slog.Logger
}

// NewService creates a duplicate registry backed by repo. Threshold is
// the minimum similarity at which an incoming entry joins an existing
// cluster.
func NewService(repo Repository, scorer *similarity.Scorer, threshold float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		scorer:    scorer,
		threshold: threshold,
		logger:    logger,
	}
}

// Insert registers a parsed issue record, scanning existing entries of
// the same kind for the best match. A match at or above the threshold
// attaches the new entry to that match's cluster, creating the cluster
// when the match had none. Ties on score go to the earliest entry.
func (s *Service) Insert(ctx context.Context, rec event.ParsedRecord) (*InsertResult, error) {
	if rec.Kind == event.KindUnknown {
		return nil, ErrUnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.ListByKind(ctx, string(rec.Kind))
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	var best *IssueEntry
	var bestScore float64
	for i := range existing {
		score := s.scorer.Score(rec, existing[i].Record)
		// Strictly-greater keeps the earliest entry on equal scores,
		// since ListByKind orders by first-seen ascending.
		if score > bestScore {
			bestScore = score
			best = &existing[i]
		}
	}

	entry := &IssueEntry{
		ID:        uuid.NewString(),
		Record:    rec,
		FirstSeen: rec.ReceivedAt,
	}
	if entry.FirstSeen.IsZero() {
		entry.FirstSeen = time.Now()
	}

	if best == nil || bestScore < s.threshold {
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("creating entry: %w", err)
		}
		s.logger.Debug("issue registered as new", "entry_id", entry.ID, "kind", rec.Kind, "best_score", bestScore)
		return &InsertResult{Entry: entry, Score: bestScore}, nil
	}

	cluster, err := s.attach(ctx, entry, best)
	if err != nil {
		return nil, err
	}

	rep, err := s.repo.GetEntry(ctx, cluster.RepresentativeID)
	if err != nil {
		return nil, fmt.Errorf("loading representative: %w", err)
	}

	s.logger.Info("duplicate issue detected",
		"entry_id", entry.ID, "cluster_id", cluster.ID,
		"representative", rep.ID, "score", bestScore)

	return &InsertResult{
		Entry:          entry,
		Duplicate:      true,
		Representative: rep,
		ClusterSize:    cluster.Size,
		Score:          bestScore,
	}, nil
}

// attach joins entry to match's cluster, creating one when match is
// still unclustered. The representative stays the earliest member: a
// fresh cluster takes the matched (older) entry as representative and
// later joins never displace it.
func (s *Service) attach(ctx context.Context, entry *IssueEntry, match *IssueEntry) (*Cluster, error) {
	var cluster *Cluster

	if match.ClusterID == nil {
		cluster = &Cluster{
			ID:               uuid.NewString(),
			RepresentativeID: match.ID,
			Size:             1,
			CreatedAt:        entry.FirstSeen,
		}
		if err := s.repo.CreateCluster(ctx, cluster); err != nil {
			return nil, fmt.Errorf("creating cluster: %w", err)
		}
		if err := s.repo.AssignCluster(ctx, match.ID, cluster.ID); err != nil {
			return nil, fmt.Errorf("assigning cluster to match: %w", err)
		}
	} else {
		loaded, err := s.repo.GetCluster(ctx, *match.ClusterID)
		if err != nil {
			return nil, fmt.Errorf("loading cluster: %w", err)
		}
		cluster = loaded
	}

	entry.ClusterID = &cluster.ID
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}
	if err := s.repo.IncrementClusterSize(ctx, cluster.ID); err != nil {
		return nil, fmt.Errorf("updating cluster size: %w", err)
	}
	cluster.Size++

	return cluster, nil
}

// ListClustersSince returns clusters formed at or after the given time,
// for report synthesis.
func (s *Service) ListClustersSince(ctx context.Context, since time.Time) ([]Cluster, error) {
	return s.repo.ListClustersSince(ctx, since)
}

// GetEntry loads a registered entry by ID.
func (s *Service) GetEntry(ctx context.Context, id string) (*IssueEntry, error) {
	return s.repo.GetEntry(ctx, id)
}
