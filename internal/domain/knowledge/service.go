package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/similarity"
)

// Service is the knowledge base of learned question/answer pairs.
// Matching is a read-only linear scan; learn and reinforce mutate under
// a single mutex so paraphrase races cannot create near-duplicates.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	threshold float64
	logger    *slog.Logger
}

// NewService creates a knowledge base. Threshold is the minimum
// semantic overlap for a stored entry to count as a match.
func NewService(repo Repository, threshold float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, threshold: threshold, logger: logger}
}

// Match returns the stored entry with the highest semantic overlap
// against the record's normalized words, or nil when nothing reaches
// the threshold.
func (s *Service) Match(ctx context.Context, rec event.ParsedRecord) (*FAQEntry, float64, error) {
	if len(rec.Words) == 0 {
		return nil, 0, nil
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listing faq entries: %w", err)
	}

	var best *FAQEntry
	var bestScore float64
	for i := range entries {
		score := similarity.Jaccard(rec.Words, entries[i].Fingerprint)
		if score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}
	if best == nil || bestScore < s.threshold {
		return nil, bestScore, nil
	}
	return best, bestScore, nil
}

// Learn stores a new question/answer pair, or reinforces an existing
// close match instead of creating a near-duplicate. The second return
// is true when a new entry was created.
func (s *Service) Learn(ctx context.Context, question event.ParsedRecord, answer string) (*FAQEntry, bool, error) {
	if len(question.Words) == 0 {
		return nil, false, ErrEmptyQuestion
	}
	if strings.TrimSpace(answer) == "" {
		return nil, false, ErrEmptyAnswer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	match, score, err := s.Match(ctx, question)
	if err != nil {
		return nil, false, err
	}

	if match != nil {
		match.UseCount++
		match.LastUsed = time.Now()
		if materiallyDifferent(match.Answer, answer) {
			match.Answer = answer
		}
		if err := s.repo.Update(ctx, match); err != nil {
			return nil, false, fmt.Errorf("reinforcing faq entry: %w", err)
		}
		s.logger.Debug("faq entry reinforced", "entry_id", match.ID, "use_count", match.UseCount, "score", score)
		return match, false, nil
	}

	now := time.Now()
	entry := &FAQEntry{
		ID:          uuid.NewString(),
		Question:    questionText(question),
		Fingerprint: question.Words,
		Answer:      answer,
		UseCount:    1,
		CreatedAt:   now,
		LastUsed:    now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, false, fmt.Errorf("creating faq entry: %w", err)
	}
	s.logger.Info("faq entry learned", "entry_id", entry.ID)
	return entry, true, nil
}

// Reinforce bumps an entry's usage counter and last-used timestamp
// after its answer was served.
func (s *Service) Reinforce(ctx context.Context, entry *FAQEntry) error {
	if entry == nil {
		return ErrEntryNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.UseCount++
	entry.LastUsed = time.Now()
	if err := s.repo.Update(ctx, entry); err != nil {
		return fmt.Errorf("reinforcing faq entry: %w", err)
	}
	return nil
}

// Size returns the number of stored entries.
func (s *Service) Size(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// materiallyDifferent ignores case and whitespace churn when deciding
// whether a new answer should replace the stored one.
func materiallyDifferent(stored, incoming string) bool {
	canon := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return canon(stored) != canon(incoming)
}

// questionText keeps the original title when present, falling back to
// the normalized words.
func questionText(rec event.ParsedRecord) string {
	if rec.Title != "" {
		return rec.Title
	}
	return strings.Join(rec.Words, " ")
}
