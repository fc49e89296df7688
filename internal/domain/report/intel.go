package report

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// FileIntel reads advisory lines from a file maintained by an external
// collaborator (security feeds, release monitors). Blank lines and
// #-comments are skipped.
type FileIntel struct {
	Path string
}

// Fetch reads the current advisory set. A missing or unreadable file is
// an error; the scheduler downgrades it to a partial report.
func (f *FileIntel) Fetch(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening intelligence feed: %w", err)
	}
	defer file.Close()

	var signals []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		signals = append(signals, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading intelligence feed: %w", err)
	}
	return signals, nil
}

// LogSink writes each report to the logger. It stands in for the
// outbound mail collaborator in deployments that only want the journal.
type LogSink struct {
	Logger *slog.Logger
}

// Deliver logs the report summary.
func (s *LogSink) Deliver(ctx context.Context, rep HealthReport) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("health report",
		"generated_at", rep.GeneratedAt,
		"event_counts", rep.EventCounts,
		"neglected", len(rep.Neglected),
		"new_clusters", len(rep.NewClusters),
		"knowledge_size", rep.KnowledgeSize,
		"intel_available", rep.Intelligence.Available,
		"action_items", strings.Join(rep.ActionItems, "; "))
	return nil
}
