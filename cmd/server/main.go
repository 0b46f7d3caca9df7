package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/studyvault/internal/config"
	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	"github.com/ganot/studyvault/internal/mcp"
	"github.com/ganot/studyvault/internal/medium"
	"github.com/ganot/studyvault/internal/metrics"
	"github.com/ganot/studyvault/internal/sqlite"
	"github.com/ganot/studyvault/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
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
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureDir(cfg.Data.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}
	db, err := sqlite.Open(cfg.Data.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m := metrics.New()

	mediumCfg := cfg.Medium
	if mediumCfg.Driver == "sqlite" || mediumCfg.Driver == "file" {
		if err := ensureDir(mediumCfg.Path); err != nil {
			logger.Warn("failed to prepare medium path", "error", err)
		}
	}
	snapshots := medium.Open(ctx, mediumCfg, medium.WithLogger(logger), medium.WithObserver(m))
	defer snapshots.Close()

	services := mcp.Services{
		Projects:  project.NewStore(snapshots, project.WithLogger(logger), project.WithObserver(m)),
		Templates: template.NewStore(snapshots, template.WithLogger(logger), template.WithObserver(m)),
		Tasks:     task.NewStore(sqlite.NewTaskRepository(db, logger), logger),
		Activity:  activity.NewService(sqlite.NewActivityRepository(db), logger),
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer)
		return
	}

	rateLimit, err := transport.NewIPRateLimiter(cfg.Server.RateLimit)
	if err != nil {
		logger.Error("invalid rate limit", "rate", cfg.Server.RateLimit, "error", err)
		os.Exit(1)
	}
	runHTTPMode(ctx, logger, transport.NewServer(mcp.NewHandler(services), transport.Options{
		MCP:           newStreamableHandler(mcpServer),
		Metrics:       m,
		Logger:        logger,
		RateLimit:     rateLimit,
		SecureHeaders: cfg.Server.SecureHeaders,
		HealthChecks: map[string]transport.HealthCheck{
			"database": db.PingContext,
			"medium":   snapshots.Ping,
		},
	}), cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func newStreamableHandler(mcpServer *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, router http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func ensureDir(path string) error {
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
