// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/api"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/history"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/mcpserver"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/planservice"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/sse"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
)

// Planner is an initialized service together with its resources.
type Planner struct {
	Service  *planservice.Service
	Config   *Config
	Logger   *slog.Logger
	Version  string
	DataRoot string // absolute data directory

	db *history.DB
}

// Close releases the history database.
func (p *Planner) Close() error {
	return p.db.Close()
}

// Setup applies opts, configures logging and opens the planner. Extra
// service options (such as an event publisher) are passed through.
func Setup(ctx context.Context, opts []Option, svcOpts ...planservice.Option) (*Planner, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("ai_enabled", cfg.AI.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := history.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	ai := app.ai
	if ai == nil && cfg.AI.Enabled() {
		ai = aiclient.New(cfg.AI.Client())
	}

	svcOpts = append([]planservice.Option{
		planservice.WithLogger(logger),
		planservice.WithRanking(cfg.Ranking.TopN, cfg.Ranking.PoolSize, cfg.Ranking.Workers),
	}, svcOpts...)

	svc, err := planservice.New(ctx, store, cfg.Data.Files, db, ai, svcOpts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init planner: %w", err)
	}

	logger.Info("Planner ready", slog.String("data_root", store.Root()))
	return &Planner{Service: svc, Config: cfg, Logger: logger, Version: app.version, DataRoot: store.Root(), db: db}, nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(app.config.App.HTTP.OverviewThrottle)
	defer broker.Close()

	p, err := Setup(ctx, opts, planservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer p.Close()

	cfg, logger, svc := p.Config, p.Logger, p.Service
	broker.SetOverview(func() any { return svc.Overview(ctx) })

	apiRouter := api.NewRouter(svc, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if svc.Snapshot() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the snapshot when a data file changes.
	if cfg.Data.Watch {
		g.Go(func() error {
			return history.Watch(gCtx, p.DataRoot, cfg.Data.Files.Names(), cfg.Data.Debounce, logger, func(paths []string) {
				logger.Info("watcher: data changed", slog.Any("paths", paths))
				if _, _, err := svc.Reload(gCtx); err != nil {
					logger.Error("watcher: reload failed", slog.String("error", err.Error()))
				}
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the remaining goroutines once the server is down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the planner tools over stdio. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append(opts, WithLogOutput(os.Stderr))
	p, err := Setup(ctx, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	p.Logger.Info("MCP server starting on stdio")
	return mcpserver.New(p.Service, p.Version).ServeStdio()
}
