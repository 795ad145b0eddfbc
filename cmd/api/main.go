// Package main is the entry point for the itinerary export API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/itinerary-export/internal/config"
	"github.com/pkordes/itinerary-export/internal/handler"
	"github.com/pkordes/itinerary-export/internal/itinerary"
	"github.com/pkordes/itinerary-export/internal/middleware"
	"github.com/pkordes/itinerary-export/internal/render"
	"github.com/pkordes/itinerary-export/internal/repo"
	"github.com/pkordes/itinerary-export/internal/service"
	"github.com/pkordes/itinerary-export/migrations"
	"github.com/pkordes/itinerary-export/spec"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default stderr logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Trip store -------------------------------------------------------
	store, closeStore, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to open trip store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Rendering --------------------------------------------------------
	formatter, err := itinerary.FormatterFor(cfg.TitleLocale)
	if err != nil {
		slog.Error("invalid TITLE_LOCALE", "error", err)
		os.Exit(1)
	}

	renderers, err := newRegistry(cfg.Render, logger)
	if err != nil {
		slog.Error("failed to set up renderers", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := renderers.Close(); err != nil {
			slog.Error("failed to close renderers", "error", err)
		}
	}()
	slog.Info("renderers ready", "default", renderers.Default(), "available", renderers.Names())

	exportSvc := service.NewExportService(itinerary.NewBuilder(formatter), renderers, cfg.Layout, logger)
	tripSvc := service.NewTripService(store, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(tripSvc, exportSvc, handler.Options{
		CORSOrigins:   cfg.CORSOrigins,
		RenderTimeout: cfg.Render.Timeout,
		OpenAPI:       spec.OpenAPI,
	}, logger)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// The write timeout leaves room for a full render.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: max(30*time.Second, cfg.Render.Timeout+5*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore builds the configured TripStore. The returned func releases its
// resources.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.TripStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		// New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repo.NewSnapshotStore(pool), pool.Close, nil

	case config.StoreFile:
		logger.Info("using local trips file", "path", cfg.TripsFile)
		return repo.NewFileStore(cfg.TripsFile), func() {}, nil

	default:
		if cfg.GitHub.Token == "" {
			logger.Warn("GITHUB_TOKEN is not set; saving trips will fail")
		}
		store, err := repo.NewGitHubStore(repo.GitHubConfig{
			Token:  cfg.GitHub.Token,
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Path:   cfg.GitHub.Path,
			Branch: cfg.GitHub.Branch,
			APIURL: cfg.GitHub.APIURL,
		}, &http.Client{Timeout: 15 * time.Second})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// migrate applies pending goose migrations through a database/sql view of
// the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	// Idle connections stay with the pool; the pool is closed by the caller.
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}

// newRegistry registers every backend; chrome only launches a browser when
// first used.
func newRegistry(cfg config.RenderConfig, logger *slog.Logger) (*render.Registry, error) {
	page := render.DefaultPageConfig()
	html := render.NewHTMLRenderer()

	opts := []render.ChromeOption{
		render.WithBrowserSources(render.DefaultSources(cfg.ChromePath, cfg.AutoDownload)...),
		render.WithTimeout(cfg.Timeout),
		render.WithLogger(logger),
	}
	if cfg.NoSandbox {
		opts = append(opts, render.WithNoSandbox())
	}

	return render.NewRegistry(cfg.Backend,
		render.NewDrawRenderer(page),
		html,
		render.NewChromeRenderer(html, page, opts...),
	)
}
