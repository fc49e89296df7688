package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mgreer/custodian/internal/repository"
)

// Service tracks pull request activity and flags neglected items.
// Mutations are serialized by a mutex; resolved items never leave that
// state.
type Service struct {
	mu     sync.Mutex
	repo   Repository
	logger *slog.Logger
}

// NewService creates an activity tracker backed by repo.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// RecordActivity notes activity on an item at ts, creating the item
// when unseen. Activity on a neglected item moves it back to open;
// resolved items are left untouched.
func (s *Service) RecordActivity(ctx context.Context, number int, author, repo string, ts time.Time) (*TrackedItem, error) {
	if number <= 0 {
		return nil, ErrMissingNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.repo.Get(ctx, number)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		item = &TrackedItem{
			Number:       number,
			Author:       author,
			Repo:         repo,
			State:        StateOpen,
			OpenedAt:     ts,
			LastActivity: ts,
		}
	case err != nil:
		return nil, fmt.Errorf("loading tracked item: %w", err)
	case item.State == StateResolved:
		return item, nil
	default:
		if item.State == StateNeglected {
			s.logger.Info("neglected item active again", "number", number)
		}
		item.State = StateOpen
		if ts.After(item.LastActivity) {
			item.LastActivity = ts
		}
		if author != "" && item.Author == "" {
			item.Author = author
		}
	}

	if err := s.repo.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("saving tracked item: %w", err)
	}
	return item, nil
}

// RecordResolution marks an item resolved on an explicit close or merge
// event. Unseen items are recorded directly in the resolved state so a
// late notification still leaves a correct audit trail.
func (s *Service) RecordResolution(ctx context.Context, number int, author, repo string, ts time.Time) (*TrackedItem, error) {
	if number <= 0 {
		return nil, ErrMissingNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.repo.Get(ctx, number)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		item = &TrackedItem{
			Number:   number,
			Author:   author,
			Repo:     repo,
			OpenedAt: ts,
		}
	case err != nil:
		return nil, fmt.Errorf("loading tracked item: %w", err)
	}

	item.State = StateResolved
	if ts.After(item.LastActivity) {
		item.LastActivity = ts
	}
	if err := s.repo.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("saving tracked item: %w", err)
	}
	s.logger.Info("tracked item resolved", "number", number)
	return item, nil
}

// ListNeglected returns open or neglected items idle longer than
// thresholdDays at the given reference time, transitioning matching
// open items to neglected. Repeating the call with the same now returns
// the same set without re-transitioning anything.
func (s *Service) ListNeglected(ctx context.Context, now time.Time, thresholdDays int) ([]TrackedItem, error) {
	if thresholdDays <= 0 {
		return nil, ErrInvalidThreshold
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.ListUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unresolved items: %w", err)
	}

	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	var neglected []TrackedItem
	for i := range items {
		item := items[i]
		if !item.LastActivity.Before(cutoff) {
			continue
		}
		if item.State == StateOpen {
			item.State = StateNeglected
			if err := s.repo.Put(ctx, &item); err != nil {
				return nil, fmt.Errorf("marking item neglected: %w", err)
			}
			s.logger.Info("item marked neglected", "number", item.Number, "idle_days", item.IdleDays(now))
		}
		neglected = append(neglected, item)
	}
	return neglected, nil
}
