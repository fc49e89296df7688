package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mgreer/custodian/internal/dispatch"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/report"
)

// registerTools registers all custodian tools on the server.
func registerTools(server *sdkmcp.Server, cfg Config) {
	svc := cfg.Services

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "submit_event",
		Description: "Submit an inbound repository notification (issue, PR, comment, question) for classification and routing",
	}, submitEventHandler(svc.Intake))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_clusters",
		Description: "List duplicate clusters formed within a trailing window",
	}, listClustersHandler(svc.Clusters))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_neglected",
		Description: "List pull requests with no activity past the neglect threshold",
	}, listNeglectedHandler(svc.Tracker, cfg.NeglectDays))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_knowledge",
		Description: "Look up the learned FAQ for an answer to a question",
	}, searchKnowledgeHandler(svc.Knowledge))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "teach_answer",
		Description: "Teach the knowledge base an answer to a question, reinforcing an existing entry when one already matches",
	}, teachAnswerHandler(svc.Knowledge))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_report",
		Description: "Synthesize a repository health report on demand",
	}, generateReportHandler(svc.Reporter))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_events",
		Description: "List the most recently handled events from the audit log",
	}, recentEventsHandler(svc.Audit))
}

type submitEventInput struct {
	Sender     string `json:"sender" jsonschema:"sender address, e.g. notifications@github.com or 'Alice <alice@example.com>'"`
	Subject    string `json:"subject" jsonschema:"notification subject line"`
	Body       string `json:"body,omitempty" jsonschema:"notification body text"`
	ReceivedAt string `json:"received_at,omitempty" jsonschema:"RFC3339 receipt time (defaults to now)"`
}

type submitEventOutput struct {
	Action     dispatch.ActionKind `json:"action"`
	Kind       event.Kind          `json:"kind"`
	Number     int                 `json:"number,omitempty"`
	Repo       string              `json:"repo,omitempty"`
	Recipients []string            `json:"recipients"`
	Subject    string              `json:"subject"`
	Body       string              `json:"body"`
}

func submitEventHandler(intake EventIntake) func(context.Context, *sdkmcp.CallToolRequest, submitEventInput) (*sdkmcp.CallToolResult, submitEventOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in submitEventInput) (*sdkmcp.CallToolResult, submitEventOutput, error) {
		receivedAt := time.Now()
		if in.ReceivedAt != "" {
			ts, err := time.Parse(time.RFC3339, in.ReceivedAt)
			if err != nil {
				return nil, submitEventOutput{}, fmt.Errorf("invalid received_at: %w", err)
			}
			receivedAt = ts
		}

		action, err := intake.Handle(ctx, event.InboundEvent{
			Sender:     in.Sender,
			Subject:    in.Subject,
			Body:       in.Body,
			ReceivedAt: receivedAt,
		})
		if err != nil {
			return nil, submitEventOutput{}, mapError(err)
		}

		return nil, submitEventOutput{
			Action:     action.Kind,
			Kind:       action.Record.Kind,
			Number:     action.Record.Number,
			Repo:       action.Record.Repo,
			Recipients: action.Recipients,
			Subject:    action.Subject,
			Body:       action.Body,
		}, nil
	}
}

type listClustersInput struct {
	SinceHours int `json:"since_hours,omitempty" jsonschema:"trailing window in hours (defaults to 168, one week)"`
}

type clusterSummary struct {
	ID          string    `json:"id"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title,omitempty"`
	FirstNumber int       `json:"first_number,omitempty"`
}

type listClustersOutput struct {
	Clusters []clusterSummary `json:"clusters"`
}

func listClustersHandler(clusters ClusterDirectory) func(context.Context, *sdkmcp.CallToolRequest, listClustersInput) (*sdkmcp.CallToolResult, listClustersOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in listClustersInput) (*sdkmcp.CallToolResult, listClustersOutput, error) {
		hours := in.SinceHours
		if hours <= 0 {
			hours = 168
		}
		since := time.Now().Add(-time.Duration(hours) * time.Hour)

		found, err := clusters.ListClustersSince(ctx, since)
		if err != nil {
			return nil, listClustersOutput{}, mapError(err)
		}

		out := listClustersOutput{Clusters: make([]clusterSummary, 0, len(found))}
		for _, c := range found {
			summary := clusterSummary{ID: c.ID, Size: c.Size, CreatedAt: c.CreatedAt}
			if rep, err := clusters.GetEntry(ctx, c.RepresentativeID); err == nil {
				summary.Title = rep.Record.Title
				summary.FirstNumber = rep.Record.Number
			}
			out.Clusters = append(out.Clusters, summary)
		}
		return nil, out, nil
	}
}

type listNeglectedInput struct {
	ThresholdDays int `json:"threshold_days,omitempty" jsonschema:"idle days before an item counts as neglected (defaults to the configured threshold)"`
}

type neglectedItem struct {
	Number       int       `json:"number"`
	Author       string    `json:"author,omitempty"`
	Repo         string    `json:"repo,omitempty"`
	IdleDays     int       `json:"idle_days"`
	LastActivity time.Time `json:"last_activity"`
}

type listNeglectedOutput struct {
	Items []neglectedItem `json:"items"`
}

func listNeglectedHandler(tr ActivityTracker, defaultDays int) func(context.Context, *sdkmcp.CallToolRequest, listNeglectedInput) (*sdkmcp.CallToolResult, listNeglectedOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in listNeglectedInput) (*sdkmcp.CallToolResult, listNeglectedOutput, error) {
		days := in.ThresholdDays
		if days <= 0 {
			days = defaultDays
		}
		now := time.Now()

		items, err := tr.ListNeglected(ctx, now, days)
		if err != nil {
			return nil, listNeglectedOutput{}, mapError(err)
		}

		out := listNeglectedOutput{Items: make([]neglectedItem, 0, len(items))}
		for _, item := range items {
			out.Items = append(out.Items, neglectedItem{
				Number:       item.Number,
				Author:       item.Author,
				Repo:         item.Repo,
				IdleDays:     item.IdleDays(now),
				LastActivity: item.LastActivity,
			})
		}
		return nil, out, nil
	}
}

type searchKnowledgeInput struct {
	Question string `json:"question" jsonschema:"free-text question to match against learned entries"`
}

type searchKnowledgeOutput struct {
	Matched  bool    `json:"matched"`
	Answer   string  `json:"answer,omitempty"`
	Question string  `json:"question,omitempty" jsonschema:"the stored question the match was learned from"`
	Score    float64 `json:"score"`
	UseCount int     `json:"use_count,omitempty"`
}

func searchKnowledgeHandler(kb KnowledgeBase) func(context.Context, *sdkmcp.CallToolRequest, searchKnowledgeInput) (*sdkmcp.CallToolResult, searchKnowledgeOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in searchKnowledgeInput) (*sdkmcp.CallToolResult, searchKnowledgeOutput, error) {
		rec := event.ParsedRecord{Title: in.Question, Words: event.Normalize(in.Question)}
		entry, score, err := kb.Match(ctx, rec)
		if err != nil {
			return nil, searchKnowledgeOutput{}, mapError(err)
		}
		if entry == nil {
			return nil, searchKnowledgeOutput{Score: score}, nil
		}
		return nil, searchKnowledgeOutput{
			Matched:  true,
			Answer:   entry.Answer,
			Question: entry.Question,
			Score:    score,
			UseCount: entry.UseCount,
		}, nil
	}
}

type teachAnswerInput struct {
	Question string `json:"question" jsonschema:"the question being answered"`
	Answer   string `json:"answer" jsonschema:"the answer to store"`
}

type teachAnswerOutput struct {
	EntryID  string `json:"entry_id"`
	Created  bool   `json:"created" jsonschema:"true when a new entry was created, false when an existing one was reinforced"`
	UseCount int    `json:"use_count"`
}

func teachAnswerHandler(kb KnowledgeBase) func(context.Context, *sdkmcp.CallToolRequest, teachAnswerInput) (*sdkmcp.CallToolResult, teachAnswerOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in teachAnswerInput) (*sdkmcp.CallToolResult, teachAnswerOutput, error) {
		rec := event.ParsedRecord{Title: in.Question, Words: event.Normalize(in.Question)}
		entry, created, err := kb.Learn(ctx, rec, in.Answer)
		if err != nil {
			return nil, teachAnswerOutput{}, mapError(err)
		}
		return nil, teachAnswerOutput{
			EntryID:  entry.ID,
			Created:  created,
			UseCount: entry.UseCount,
		}, nil
	}
}

type generateReportInput struct{}

type generateReportOutput struct {
	Report report.HealthReport `json:"report"`
}

func generateReportHandler(rep Reporter) func(context.Context, *sdkmcp.CallToolRequest, generateReportInput) (*sdkmcp.CallToolResult, generateReportOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in generateReportInput) (*sdkmcp.CallToolResult, generateReportOutput, error) {
		result, err := rep.RunOnce(ctx)
		if err != nil {
			return nil, generateReportOutput{}, mapError(err)
		}
		return nil, generateReportOutput{Report: *result}, nil
	}
}

type recentEventsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries (defaults to 50)"`
}

type recentEventsOutput struct {
	Events []event.LogEntry `json:"events"`
}

func recentEventsHandler(audit AuditTrail) func(context.Context, *sdkmcp.CallToolRequest, recentEventsInput) (*sdkmcp.CallToolResult, recentEventsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in recentEventsInput) (*sdkmcp.CallToolResult, recentEventsOutput, error) {
		entries, err := audit.List(ctx, in.Limit)
		if err != nil {
			return nil, recentEventsOutput{}, mapError(err)
		}
		if entries == nil {
			entries = []event.LogEntry{}
		}
		return nil, recentEventsOutput{Events: entries}, nil
	}
}
