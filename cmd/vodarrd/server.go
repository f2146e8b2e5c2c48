package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/vodarr/vodarr/internal/api"
	"github.com/vodarr/vodarr/internal/catalog"
	"github.com/vodarr/vodarr/internal/config"
	"github.com/vodarr/vodarr/internal/dedupe"
	"github.com/vodarr/vodarr/internal/ingest"
	"github.com/vodarr/vodarr/internal/migrations"
	"github.com/vodarr/vodarr/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func runServer(configPath string) error {
	if configPath == "" {
		found, err := config.Discover()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		configPath = found
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure data directories exist
	for _, dir := range []string{filepath.Dir(cfg.Database.Path), cfg.Playlists.Dir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Database.Path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := catalog.NewStore(db)

	var resolver ingest.Resolver
	if cfg.TMDB.APIKey != "" {
		resolver = tmdb.NewClient(cfg.TMDB.APIKey, tmdb.NewSQLCache(db),
			tmdb.WithBaseURL(cfg.TMDB.BaseURL),
			tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
			tmdb.WithLanguage(cfg.TMDB.Language),
			tmdb.WithLogger(logger.With("component", "tmdb")),
		)
	} else {
		logger.Warn("tmdb api key not configured, imports keep coarse types")
		resolver = tmdb.Passthrough{}
	}

	ingestor := ingest.NewIngestor(resolver, logger.With("component", "ingest"))
	processor := ingest.NewProcessor(store, ingestor, cfg.Playlists.Dir, cfg.Playlists.ChunkSize, logger)
	reconciler := dedupe.NewReconciler(store, logger)

	mux := http.NewServeMux()
	api.New(processor, reconciler, logger).RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"playlists", cfg.Playlists.Dir,
		"chunk_size", cfg.Playlists.ChunkSize,
		"tmdb", cfg.TMDB.APIKey != "",
		"log_level", cfg.Server.LogLevel,
	)

	srv := &http.Server{Addr: addr, Handler: api.LogRequests(mux, logger)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
