package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/haytac/lounge-emotes/internal/catalog"
	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/database"
	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/metrics"
	"github.com/haytac/lounge-emotes/internal/picker"
	"github.com/haytac/lounge-emotes/internal/proxy"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"github.com/haytac/lounge-emotes/internal/scheduler"
	"github.com/haytac/lounge-emotes/internal/server"
	"github.com/haytac/lounge-emotes/internal/settings"
	"github.com/haytac/lounge-emotes/internal/watcher"
	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Application holds all dependencies for the app.
type Application struct {
	Config   *config.AppConfig
	DB       *database.DB
	Settings *settings.Provider
	Catalog  *catalog.Client
	Rewriter *rewrite.Rewriter
	Registry *lazyload.Registry
	Watcher  *watcher.Watcher
	Picker   *picker.Picker

	initializing atomic.Bool
	// container is the message container found by the last successful
	// Initialize. Owned by the dispatch loop.
	container *html.Node

	retryMu    sync.Mutex
	retryTimer *time.Timer
	onRetry    func(Host)
}

// NewApplication opens the settings database and wires the pipeline with an
// HTTP client honouring the configured proxy.
func NewApplication(cfg *config.AppConfig) (*Application, error) {
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	httpClient, err := proxy.NewHTTPClientFactory(cfg.Catalog.Timeout).GetClient(cfg.Proxy)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build HTTP client: %w", err)
	}

	a, err := New(cfg, database.NewSettingsStore(db), httpClient)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.DB = db
	return a, nil
}

// New wires the pipeline on top of an existing settings store and HTTP client.
func New(cfg *config.AppConfig, store interfaces.KeyValueStore, httpClient *http.Client) (*Application, error) {
	client := catalog.NewClient(httpClient, catalog.Options{
		Endpoint:          cfg.Catalog.Endpoint,
		Categories:        catalog.ParseCategories(cfg.Catalog.Categories),
		MaxPages:          cfg.Catalog.MaxPages,
		PerPage:           cfg.Catalog.PerPage,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		UserAgent:         cfg.Catalog.UserAgent,
	})
	table := client.Table()
	rw := rewrite.New(table, rewrite.Options{Size: settings.DefaultEmoteSize, UnicodeShortcodes: cfg.UnicodeShortcodes})
	registry := &lazyload.Registry{}
	w, err := watcher.New(rw, table, registry, cfg.Selectors)
	if err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}

	a := &Application{
		Config:   cfg,
		Settings: settings.NewProvider(store),
		Catalog:  client,
		Rewriter: rw,
		Registry: registry,
		Watcher:  w,
		Picker:   picker.New(table),
	}
	a.onRetry = func(h Host) {
		if err := a.Initialize(context.Background(), h); err != nil && !errors.Is(err, ErrHostNotReady) {
			log.Error().Err(err).Msg("Retried initialization failed")
		}
	}
	return a, nil
}

// Run fetches the catalog and serves the HTTP API and metrics until a
// signal arrives or ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	log.Info().Msg("Starting application...")

	metrics.StartServer(app.Config.MetricsPort)

	if _, err := app.Catalog.FetchCatalog(ctx); err != nil {
		// The API stays up so the catalog can be refreshed later.
		log.Error().Err(err).Msg("Initial catalog fetch failed")
	}

	sched := scheduler.New()
	if err := app.scheduleRefresh(sched); err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	api := server.New(server.Options{
		Catalog:           app.Catalog,
		Settings:          app.Settings,
		Selectors:         app.Config.Selectors,
		UnicodeShortcodes: app.Config.UnicodeShortcodes,
	})
	httpSrv := &http.Server{
		Addr:              app.Config.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", app.Config.ListenAddr).Msg("Starting HTTP API")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case s := <-sigCh:
		log.Info().Str("signal", s.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Application context done, shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP API failed")
		runErr = fmt.Errorf("http api: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP API")
	}

	app.Close()
	log.Info().Msg("Application shut down gracefully.")
	return runErr
}

// scheduleRefresh registers the periodic catalog refresh when enabled.
func (app *Application) scheduleRefresh(sched *scheduler.Scheduler) error {
	interval := app.Config.Catalog.RefreshInterval
	if interval <= 0 {
		log.Info().Msg("Periodic catalog refresh disabled")
		return nil
	}
	err := sched.Add("catalog-refresh", interval, interval, func(ctx context.Context) {
		if _, err := app.Catalog.FetchCatalog(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled catalog refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling catalog refresh: %w", err)
	}
	return nil
}

// Close stops pending retries, drops the lazy observer and closes the database.
func (app *Application) Close() {
	app.retryMu.Lock()
	if app.retryTimer != nil {
		app.retryTimer.Stop()
		app.retryTimer = nil
	}
	app.retryMu.Unlock()

	app.Registry.Detach()

	if app.DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := app.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}
}
