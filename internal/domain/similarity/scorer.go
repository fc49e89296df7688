// Package similarity scores how alike two parsed notifications are.
// Scoring is pure: it has no state beyond its configured weights, so it
// may run concurrently and outside any store lock.
package similarity

import (
	"fmt"

	"github.com/mgreer/custodian/internal/domain/event"
)

// Weights control how much each signal contributes to the combined
// score. Signals whose operands are empty on either side are excluded
// and their weight redistributed over the remaining signals.
type Weights struct {
	Error    float64 `yaml:"error"`
	File     float64 `yaml:"file"`
	Function float64 `yaml:"function"`
	Semantic float64 `yaml:"semantic"`
}

// DefaultWeights returns the standard signal weighting.
func DefaultWeights() Weights {
	return Weights{
		Error:    0.35,
		File:     0.25,
		Function: 0.20,
		Semantic: 0.20,
	}
}

// Validate rejects weights that cannot form a convex combination.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"error":    w.Error,
		"file":     w.File,
		"function": w.Function,
		"semantic": w.Semantic,
	} {
		if v < 0 {
			return fmt.Errorf("similarity weight %q cannot be negative (got %v)", name, v)
		}
	}
	if w.Error+w.File+w.Function+w.Semantic <= 0 {
		return fmt.Errorf("similarity weights must have a positive sum")
	}
	return nil
}

// Scorer computes weighted similarity between parsed records.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns a similarity in [0,1]. It is symmetric, and reflexive
// whenever at least one signal is defined for the record.
func (s *Scorer) Score(a, b event.ParsedRecord) float64 {
	signals := []struct {
		weight float64
		x, y   []string
	}{
		{s.weights.Error, a.ErrorTerms, b.ErrorTerms},
		{s.weights.File, a.Files, b.Files},
		{s.weights.Function, a.Functions, b.Functions},
		{s.weights.Semantic, a.Words, b.Words},
	}

	var sum, weightSum float64
	for _, sig := range signals {
		if len(sig.x) == 0 || len(sig.y) == 0 {
			continue
		}
		sum += sig.weight * Jaccard(sig.x, sig.y)
		weightSum += sig.weight
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// Jaccard computes |intersection| / |union| over two deduplicated
// token slices.
func Jaccard(a, b []string) float64 {
	union := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		union[t] = true
	}
	var inter int
	for _, t := range b {
		if union[t] {
			inter++
		}
		union[t] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}
