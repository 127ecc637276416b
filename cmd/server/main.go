// Package main implements the entry point for the rote server, a
// spaced-repetition study service exposing card scheduling, note
// management and collection search over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rotekit/rote/internal/config"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/platform/postgres"
	"github.com/rotekit/rote/internal/service/collection"
	"github.com/rotekit/rote/internal/srs"
	"github.com/rotekit/rote/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load a local .env when present; real environments set variables
	// directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("failed to close database", slog.String("error", cerr.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := postgres.RunMigrations(db, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	epoch, err := postgres.CollectionEpoch(ctx, db)
	if err != nil {
		return fmt.Errorf("read collection epoch: %w", err)
	}

	seed := cfg.Scheduler.FuzzSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sched := srs.NewScheduler(seed)

	svc := collection.New(
		store.NewSQLTransactor(db),
		postgres.NewPostgresCardStore(db, log),
		postgres.NewPostgresNoteStore(db, log),
		postgres.NewPostgresDeckStore(db, log),
		postgres.NewPostgresNotetypeStore(db, log),
		sched,
		epoch,
		log,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
