// Package mcp exposes the custodian's intelligence over the Model
// Context Protocol, for operators and agents that want to feed events
// in or query what the service has learned.
package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mgreer/custodian/internal/dispatch"
	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/domain/report"
	"github.com/mgreer/custodian/internal/domain/tracker"
)

// EventIntake defines the dispatcher operations needed by MCP.
type EventIntake interface {
	Handle(ctx context.Context, ev event.InboundEvent) (*dispatch.OutboundAction, error)
}

// ClusterDirectory defines the duplicate-registry operations needed by MCP.
type ClusterDirectory interface {
	ListClustersSince(ctx context.Context, since time.Time) ([]dedup.Cluster, error)
	GetEntry(ctx context.Context, id string) (*dedup.IssueEntry, error)
}

// ActivityTracker defines the tracker operations needed by MCP.
type ActivityTracker interface {
	ListNeglected(ctx context.Context, now time.Time, thresholdDays int) ([]tracker.TrackedItem, error)
}

// KnowledgeBase defines the FAQ operations needed by MCP.
type KnowledgeBase interface {
	Match(ctx context.Context, rec event.ParsedRecord) (*knowledge.FAQEntry, float64, error)
	Learn(ctx context.Context, question event.ParsedRecord, answer string) (*knowledge.FAQEntry, bool, error)
}

// Reporter defines the on-demand report operation needed by MCP.
type Reporter interface {
	RunOnce(ctx context.Context) (*report.HealthReport, error)
}

// AuditTrail defines the event-log operations needed by MCP.
type AuditTrail interface {
	List(ctx context.Context, limit int) ([]event.LogEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Intake    EventIntake
	Clusters  ClusterDirectory
	Tracker   ActivityTracker
	Knowledge KnowledgeBase
	Reporter  Reporter
	Audit     AuditTrail
}

// Config contains server configuration.
type Config struct {
	Services    Services
	NeglectDays int // default threshold for list_neglected
	Logger      *slog.Logger
}

const serverInstructions = `Custodian watches a repository's inbound activity: it registers
issue reports and groups duplicates, answers known questions from a
learned FAQ, tracks pull request neglect, and synthesizes periodic
health reports. Use submit_event to feed it a notification, and the
query tools to inspect what it has accumulated.`

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "custodian",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
