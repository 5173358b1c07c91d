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
	"golang.org/x/time/rate"

	"github.com/starford/notes/internal/alarm"
	"github.com/starford/notes/internal/api"
	"github.com/starford/notes/internal/importer"
	"github.com/starford/notes/internal/noteservice"
	"github.com/starford/notes/internal/recurrence"
	"github.com/starford/notes/internal/sse"
	"github.com/starford/notes/internal/storage"
	"github.com/starford/notes/internal/store"
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	version string
	db      *store.DB
	svc     *noteservice.Service
}

func (rt *runtime) Close() error {
	if rt.db == nil {
		return nil
	}
	return rt.db.Close()
}

// setup applies opts and initializes the logger.
func setup(opts []Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.newLogger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("inbox", cfg.Import.Inbox),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &runtime{cfg: cfg, logger: logger, version: app.version}, nil
}

// open opens the database and creates the note service. extra options are
// passed to the service.
func (rt *runtime) open(ctx context.Context, extra ...noteservice.Option) error {
	db, err := store.Open(ctx, rt.cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	svcOpts := append([]noteservice.Option{
		noteservice.WithLogger(rt.logger),
		noteservice.WithAppendIDToTitle(rt.cfg.App.AppendIDToTitle),
		noteservice.WithTrashRetention(rt.cfg.Trash.AutoDeleteAfter),
	}, extra...)
	rt.db = db
	rt.svc = noteservice.NewService(db, recurrence.Finder{}, rt.cfg.Preview, svcOpts...)
	return nil
}

// Run starts the HTTP server with its background workers.
func Run(ctx context.Context, opts ...Option) error {
	// SSE broker.
	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	// Reminder alarms fire on in-process timers. The service is created
	// after the manager, so the fire callback reads it once set.
	var svc *noteservice.Service
	var manager *alarm.Manager
	timers := alarm.NewTimerCallback(func(noteID int64) {
		manager.Fired(noteID)
		if err := svc.ReminderFired(ctx, noteID); err != nil {
			slog.Error("reminder fired", slog.Int64("note_id", noteID), slog.String("error", err.Error()))
		}
	})

	rt, err := setup(opts)
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	manager = alarm.NewManager(timers, time.Now, logger)
	if err := rt.open(ctx, noteservice.WithNotifier(broker), noteservice.WithAlarms(manager)); err != nil {
		return err
	}
	defer rt.Close()
	defer timers.Stop()
	svc = rt.svc
	if err := svc.UpdateAllAlarms(ctx); err != nil {
		logger.Warn("initial alarm scheduling failed", slog.String("error", err.Error()))
	}

	handler := newHTTPHandler(cfg, svc, broker)
	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: handler,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Purge old notes from the trash.
	g.Go(func() error {
		return svc.RunTrashPurge(gCtx, cfg.Trash.PurgeInterval)
	})

	// Watch the import inbox.
	if cfg.Import.Inbox != "" {
		inboxDir, err := storage.NewFS(cfg.Import.Inbox)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		inbox := importer.New(svc, inboxDir, logger, importer.DefaultSettle, nil)
		g.Go(func() error {
			return inbox.Watch(gCtx)
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
		defer signal.Stop(quit)

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

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newHTTPHandler builds the root router: health checks and the API under /api.
func newHTTPHandler(cfg *Config, svc *noteservice.Service, events http.Handler) http.Handler {
	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled() {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}
	apiRouter := api.NewRouter(svc, api.RouterOptions{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      events,
		Limiter:     limiter,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ready(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", apiRouter)
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
