// Package dispatch routes parsed inbound events to the duplicate
// registry, knowledge base, or activity tracker and produces the
// outbound action for each.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/domain/tracker"
)

// Registry is the duplicate-registry surface the dispatcher needs.
type Registry interface {
	Insert(ctx context.Context, rec event.ParsedRecord) (*dedup.InsertResult, error)
}

// KnowledgeBase is the FAQ surface the dispatcher needs.
type KnowledgeBase interface {
	Match(ctx context.Context, rec event.ParsedRecord) (*knowledge.FAQEntry, float64, error)
	Reinforce(ctx context.Context, entry *knowledge.FAQEntry) error
}

// Tracker is the activity-tracking surface the dispatcher needs.
type Tracker interface {
	RecordActivity(ctx context.Context, number int, author, repo string, ts time.Time) (*tracker.TrackedItem, error)
	RecordResolution(ctx context.Context, number int, author, repo string, ts time.Time) (*tracker.TrackedItem, error)
}

// AuditLog records every handled event.
type AuditLog interface {
	Log(ctx context.Context, entry *event.LogEntry) error
}

// Dispatcher wires the parser to the stores.
type Dispatcher struct {
	parser    *event.Parser
	registry  Registry
	knowledge KnowledgeBase
	tracker   Tracker
	audit     AuditLog
	logger    *slog.Logger
}

// New creates a dispatcher.
func New(parser *event.Parser, registry Registry, kb KnowledgeBase, tr Tracker, audit AuditLog, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		parser:    parser,
		registry:  registry,
		knowledge: kb,
		tracker:   tr,
		audit:     audit,
		logger:    logger,
	}
}

// Handle parses one inbound event, routes it by kind, and returns the
// outbound action. Unknown kinds get a generic acknowledgement and are
// still audited, but never reach the registry or the knowledge base.
func (d *Dispatcher) Handle(ctx context.Context, ev event.InboundEvent) (*OutboundAction, error) {
	rec := d.parser.Parse(ev)
	name := senderName(ev.Sender)

	var (
		action *OutboundAction
		err    error
	)
	switch rec.Kind {
	case event.KindIssue:
		action, err = d.handleIssue(ctx, ev, rec, name)
	case event.KindQuestion, event.KindComment:
		action, err = d.handleQuestion(ctx, ev, rec, name)
	case event.KindPullRequest, event.KindReview:
		action, err = d.handlePullRequest(ctx, ev, rec, name)
	default:
		action = &OutboundAction{
			Kind:       ActionAcknowledgeGeneric,
			Recipients: []string{ev.Sender},
			Subject:    "Re: " + ev.Subject,
			Body:       renderGeneric(name),
			Record:     rec,
		}
	}
	if err != nil {
		return nil, err
	}

	if d.audit != nil {
		entry := &event.LogEntry{
			Sender:     ev.Sender,
			Subject:    ev.Subject,
			Kind:       rec.Kind,
			Number:     rec.Number,
			Action:     string(action.Kind),
			ReceivedAt: ev.ReceivedAt,
		}
		if logErr := d.audit.Log(ctx, entry); logErr != nil {
			d.logger.Warn("event audit failed", "error", logErr)
		}
	}

	d.logger.Info("event handled", "kind", rec.Kind, "action", action.Kind, "sender", ev.Sender)
	return action, nil
}

func (d *Dispatcher) handleIssue(ctx context.Context, ev event.InboundEvent, rec event.ParsedRecord, name string) (*OutboundAction, error) {
	result, err := d.registry.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("registering issue: %w", err)
	}

	if result.Duplicate {
		repNumber := 0
		if result.Representative != nil {
			repNumber = result.Representative.Record.Number
		}
		return &OutboundAction{
			Kind:       ActionReportDuplicate,
			Recipients: []string{ev.Sender},
			Subject:    "Re: " + ev.Subject,
			Body:       renderDuplicate(name, rec.Repo, repNumber, result.ClusterSize),
			Record:     rec,
		}, nil
	}

	return &OutboundAction{
		Kind:       ActionAcknowledgeIssue,
		Recipients: []string{ev.Sender},
		Subject:    "Re: " + ev.Subject,
		Body:       renderNewIssue(name, rec.Repo),
		Record:     rec,
	}, nil
}

func (d *Dispatcher) handleQuestion(ctx context.Context, ev event.InboundEvent, rec event.ParsedRecord, name string) (*OutboundAction, error) {
	entry, score, err := d.knowledge.Match(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("matching question: %w", err)
	}

	if entry == nil {
		return &OutboundAction{
			Kind:       ActionEscalate,
			Recipients: []string{ev.Sender},
			Subject:    "Re: " + ev.Subject,
			Body:       renderEscalation(name),
			Record:     rec,
		}, nil
	}

	if err := d.knowledge.Reinforce(ctx, entry); err != nil {
		d.logger.Warn("faq reinforcement failed", "entry_id", entry.ID, "error", err)
	}
	d.logger.Debug("question answered from knowledge base", "entry_id", entry.ID, "score", score)

	return &OutboundAction{
		Kind:       ActionAnswerQuestion,
		Recipients: []string{ev.Sender},
		Subject:    "Re: " + ev.Subject,
		Body:       renderAnswer(name, entry.Answer),
		Record:     rec,
	}, nil
}

func (d *Dispatcher) handlePullRequest(ctx context.Context, ev event.InboundEvent, rec event.ParsedRecord, name string) (*OutboundAction, error) {
	if rec.Number > 0 {
		var err error
		if rec.Closed {
			_, err = d.tracker.RecordResolution(ctx, rec.Number, rec.Author, rec.Repo, ev.ReceivedAt)
		} else {
			_, err = d.tracker.RecordActivity(ctx, rec.Number, rec.Author, rec.Repo, ev.ReceivedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("tracking pull request: %w", err)
		}
	} else {
		d.logger.Warn("pull request event without a number, not tracked", "subject", ev.Subject)
	}

	return &OutboundAction{
		Kind:       ActionAcknowledgePR,
		Recipients: []string{ev.Sender},
		Subject:    "Re: " + ev.Subject,
		Body:       renderPRAck(name, rec.Repo, rec.Closed, rec.Kind == event.KindReview),
		Record:     rec,
	}, nil
}
