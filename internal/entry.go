// Package internal provides the application wiring for every command:
// one-shot generation, the staleness check, watch mode, the HTTP server
// and the MCP server.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/decisionlog/internal/api"
	"github.com/starford/decisionlog/internal/docservice"
	"github.com/starford/decisionlog/internal/generator"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/mcpserver"
	"github.com/starford/decisionlog/internal/metrics"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/sse"
	"github.com/starford/decisionlog/internal/storage"
)

// runtime holds the components shared by every command.
type runtime struct {
	app    *application
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	gen    *generator.Generator
}

// setup builds the shared components. The SQLite index is opened only when
// indexed is set; one-shot commands have no reader for it.
func setup(opts []Option, indexed bool, extra ...generator.Option) (*runtime, error) {
	app := &application{stdout: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// stdout carries the confirmation lines (or the MCP transport), so logs
	// go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("root", cfg.Workspace.Root),
		slog.String("decisions_dir", cfg.Workspace.DecisionsDir),
		slog.String("ideas_dir", cfg.Workspace.IdeasDir),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Workspace.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	genOpts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithOutput(app.stdout),
	}
	var db *index.DB
	if indexed {
		db, err = index.Open(cfg.Index.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		genOpts = append(genOpts, generator.WithIndex(db))
	}
	genOpts = append(genOpts, extra...)

	return &runtime{
		app:    app,
		logger: logger,
		store:  store,
		db:     db,
		gen:    generator.New(store, cfg.Workspace.Paths(), genOpts...),
	}, nil
}

func (rt *runtime) Close() {
	if rt.db == nil {
		return
	}
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("index close failed", slog.String("error", err.Error()))
	}
}

// watchDirs returns the absolute category directories.
func (rt *runtime) watchDirs() ([]string, error) {
	paths := rt.gen.Paths()
	var dirs []string
	for _, rel := range []string{paths.DecisionsDir, paths.IdeasDir} {
		abs, err := rt.store.Abs(rel)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

// relPaths converts watcher paths to workspace-relative slash paths.
func (rt *runtime) relPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(rt.store.Root(), p); err == nil {
			p = rel
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

// Generate runs a single regeneration pass.
func Generate(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	_, err = rt.gen.Run(ctx)
	return err
}

// Check reports generated files that are out of date without writing them.
// It returns apperr.ErrStale when any file would change.
func Check(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	stale, err := rt.gen.Check(ctx)
	for _, p := range stale {
		fmt.Fprintf(rt.app.stdout, "✗ %s 갱신 필요\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.app.stdout, "✓ 모든 산출물이 최신 상태입니다")
	return nil
}

// Watch regenerates once and then again after every burst of document
// changes until a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.gen.Run(ctx); err != nil {
		rt.logger.Error("initial regeneration failed", slog.String("error", err.Error()))
	}

	dirs, err := rt.watchDirs()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return index.Watch(gCtx, dirs, rt.app.config.Watch.Debounce, rt.logger, func(ctx context.Context, paths []string) {
			rt.logger.Info("documents changed", slog.Any("paths", rt.relPaths(paths)))
			if _, err := rt.gen.Run(ctx); err != nil {
				rt.logger.Error("regeneration failed", slog.String("error", err.Error()))
			}
		})
	})

	g.Go(func() error {
		waitForShutdown(gCtx, rt.logger)
		cancel()
		return nil
	})

	return g.Wait()
}

// Serve starts the HTTP API together with the watcher.
func Serve(ctx context.Context, opts ...Option) error {
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	rt, err := setup(opts, true, generator.WithRecorder(recorder))
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.app.config
	logger := rt.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := docservice.NewService(rt.gen, rt.store, rt.db,
		docservice.OnRegenerate(broker.PublishReport))

	if _, err := svc.Regenerate(ctx); err != nil {
		logger.Error("initial regeneration failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.db.ListDocuments(models.KindADR); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", recorder.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	dirs, err := rt.watchDirs()
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return index.Watch(gCtx, dirs, cfg.Watch.Debounce, logger, func(ctx context.Context, paths []string) {
			broker.PublishChanges(rt.relPaths(paths))
			if _, err := svc.Regenerate(ctx); err != nil {
				logger.Error("regeneration failed", slog.String("error", err.Error()))
				broker.PublishFailure(err)
			}
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		waitForShutdown(gCtx, logger)
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

// ServeMCP runs the MCP server on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	// stdout is the MCP transport; confirmation lines are dropped.
	rt, err := setup(append(opts, WithOutput(io.Discard)), true)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Populate the index so lookups work before the first regenerate call.
	if _, err := rt.gen.Refresh(ctx); err != nil {
		return err
	}
	svc := docservice.NewService(rt.gen, rt.store, rt.db)

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, rt.app.version).ServeStdio()
}

// errShutdown cancels the errgroup context so the watcher stops with the
// HTTP server.
var errShutdown = errors.New("shutdown requested")

func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
