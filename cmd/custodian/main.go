package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/mgreer/custodian/internal/config"
	"github.com/mgreer/custodian/internal/dispatch"
	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/domain/report"
	"github.com/mgreer/custodian/internal/domain/similarity"
	"github.com/mgreer/custodian/internal/domain/tracker"
	"github.com/mgreer/custodian/internal/mcp"
	"github.com/mgreer/custodian/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	issueRepo := sqlite.NewIssueRepository(db)
	faqRepo := sqlite.NewFAQRepository(db)
	trackedRepo := sqlite.NewTrackedItemRepository(db)
	eventLogRepo := sqlite.NewEventLogRepository(db)

	scorer := similarity.NewScorer(cfg.Similarity.Weights)
	dedupSvc := dedup.NewService(issueRepo, scorer, cfg.Thresholds.Duplicate, logger)
	knowledgeSvc := knowledge.NewService(faqRepo, cfg.Thresholds.FAQMatch, logger)
	trackerSvc := tracker.NewService(trackedRepo, logger)
	dispatcher := dispatch.New(event.NewParser(), dedupSvc, knowledgeSvc, trackerSvc, eventLogRepo, logger)

	var intel report.IntelProvider
	if cfg.Report.IntelPath != "" {
		intel = &report.FileIntel{Path: cfg.Report.IntelPath}
	}
	scheduler := report.NewScheduler(report.SchedulerConfig{
		Interval:    time.Duration(cfg.Report.IntervalSeconds) * time.Second,
		NeglectDays: cfg.Thresholds.NeglectDays,
		Events:      eventLogRepo,
		Clusters:    dedupSvc,
		Neglect:     trackerSvc,
		Knowledge:   knowledgeSvc,
		Intel:       intel,
		Sink:        &report.LogSink{Logger: logger},
		Logger:      logger,
	})

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Intake:    dispatcher,
			Clusters:  dedupSvc,
			Tracker:   trackerSvc,
			Knowledge: knowledgeSvc,
			Reporter:  scheduler,
			Audit:     eventLogRepo,
		},
		NeglectDays: cfg.Thresholds.NeglectDays,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return scheduler.Run(ctx)
	})
	group.Go(func() error {
		if cfg.Transport.Mode == "stdio" {
			return runStdioMode(ctx, logger, mcpServer)
		}
		return runHTTPMode(ctx, logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")
	transport := &sdkmcp.StdioTransport{}

	// Run blocks until stdin closes or context is canceled.
	if err := mcpServer.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
