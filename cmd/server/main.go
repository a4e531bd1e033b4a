package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/pinpoint/internal/config"
	"github.com/playperu/pinpoint/internal/database"
	"github.com/playperu/pinpoint/internal/handler/health"
	"github.com/playperu/pinpoint/internal/migrations"
	"github.com/playperu/pinpoint/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.RunContext(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	levels := server.NewLevelDocStore(db)
	if err := server.SeedDemo(ctx, logger, levels); err != nil {
		return fmt.Errorf("seeding demo level: %w", err)
	}

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin api disabled")
	}

	// --- HTTP Server ---
	sessions := server.NewSessions(cfg.Round)
	broker := server.NewBroker()

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Levels:            levels,
		Sessions:          sessions,
		Broker:            broker,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SPADir:            cfg.SPADir,
		Checks: map[string]health.Checker{
			"sqlite": health.CheckerFunc(db.PingContext),
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SessionTTL, sweepInterval(cfg.SessionTTL), func(ids []string) {
			broker.Expire(ids...)
			logger.Info("expired idle sessions", "count", len(ids))
		})
	})

	return g.Wait()
}

func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
