// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/api"
	"github.com/JakeFAU/trendwatch/internal/clock/system"
	"github.com/JakeFAU/trendwatch/internal/config"
	"github.com/JakeFAU/trendwatch/internal/extractor"
	"github.com/JakeFAU/trendwatch/internal/id/uuid"
	"github.com/JakeFAU/trendwatch/internal/orchestrator"
	"github.com/JakeFAU/trendwatch/internal/resolver"
	"github.com/JakeFAU/trendwatch/internal/session"
	"github.com/JakeFAU/trendwatch/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	orchestrator *orchestrator.Orchestrator
	apiServer    *api.Server
}

// Build creates the application's dependencies. No browser is started until
// the first fetch asks for a session.
func Build(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("headless", cfg.Browser.Headless),
	)

	store, err := storage.New(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("record store init failed: %w", err)
	}

	sessions := session.NewManager(session.Config{
		Headless:       cfg.Browser.Headless,
		NoSandbox:      cfg.Browser.NoSandbox,
		Proxy:          cfg.Browser.Proxy,
		UserAgent:      cfg.Browser.UserAgent,
		WindowWidth:    cfg.Browser.WindowWidth,
		WindowHeight:   cfg.Browser.WindowHeight,
		StartupTimeout: time.Duration(cfg.Browser.StartupTimeoutSeconds) * time.Second,
	}, logger)

	lookup := resolver.New(resolver.Config{
		URL:       cfg.Lookup.URL,
		Timeout:   time.Duration(cfg.Lookup.TimeoutSeconds) * time.Second,
		Proxy:     cfg.Browser.Proxy,
		UserAgent: cfg.Browser.UserAgent,
	})

	ex := extractor.New(extractor.Config{
		LoginURL:       cfg.Scrape.LoginURL,
		Username:       cfg.Scrape.Username,
		Password:       cfg.Scrape.Password,
		UsernameXPath:  cfg.Scrape.UsernameXPath,
		PasswordXPath:  cfg.Scrape.PasswordXPath,
		TrendsXPath:    cfg.Scrape.TrendsXPath,
		TopicSelector:  cfg.Scrape.TopicSelector,
		ElementTimeout: cfg.ElementTimeout(),
		MaxTopics:      cfg.Scrape.MaxTopics,
	}, lookup, system.New(), uuid.New(), logger)
	if cfg.Scrape.Username == "" || cfg.Scrape.Password == "" {
		logger.Warn("scrape credentials not configured; fetches will fail until they are set")
	}

	orch := orchestrator.New(sessions, ex, store, orchestrator.Config{
		FetchTimeout:   cfg.FetchTimeout(),
		PersistTimeout: cfg.StoreWriteTimeout(),
	}, logger)

	return &App{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orch,
		apiServer:    api.NewServer(orch, cfg.Server, logger),
	}, nil
}

// Handler returns the HTTP surface.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Orchestrator exposes the fetch state machine for one-shot commands.
func (a *App) Orchestrator() *orchestrator.Orchestrator {
	return a.orchestrator
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	closeErr := a.Close(shutdownCtx)

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve http: %w", err)
	default:
		return closeErr
	}
}

// Close stops background fetches and tears down the browser session.
func (a *App) Close(ctx context.Context) error {
	err := a.orchestrator.Close(ctx)
	if err != nil {
		a.logger.Warn("orchestrator close failed", zap.Error(err))
	}
	if serr := a.logger.Sync(); serr != nil {
		a.logger.Debug("logger sync failed", zap.Error(serr))
	}
	a.logger.Info("shutdown complete")
	return err
}
