// Package storefront wires the browser-facing client of the marketplace:
// configuration, the session store, tracing, the commerce API client and
// the web host, behind one App that can be run until its context ends.
//
// Most programs only need:
//
//	cfg, err := core.NewConfig()
//	app, err := storefront.New(ctx, cfg)
//	err = app.Run(ctx)
package storefront

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
	"github.com/itsneelabh/storefront/telemetry"
	"github.com/itsneelabh/storefront/web"
)

const defaultShutdownTimeout = 10 * time.Second

// App owns every long-lived dependency of the storefront process
type App struct {
	config   *core.Config
	logger   core.Logger
	sessions session.Manager
	tracing  *telemetry.Provider
	web      *web.Server

	mu     sync.Mutex
	server *http.Server
}

// Option customizes New
type Option func(*App)

// WithLogger replaces the production logger built from config
func WithLogger(l core.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithSessionManager supplies a session store instead of building one from
// config. The App closes it on shutdown.
func WithSessionManager(m session.Manager) Option {
	return func(a *App) { a.sessions = m }
}

// New builds the application from cfg
func New(ctx context.Context, cfg *core.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, core.NewOpError("storefront.New", "config", core.ErrMissingConfiguration)
	}
	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = core.NewProductionLogger(cfg.Logging, cfg.Name)
	}

	tracing, err := telemetry.NewProvider(ctx, cfg.Name, cfg.Telemetry, cfg.Development,
		telemetry.WithServiceVersion(Version),
		telemetry.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracing = tracing

	if a.sessions == nil {
		sessions, err := session.New(cfg.Session, a.logger)
		if err != nil {
			_ = tracing.Shutdown(ctx)
			return nil, err
		}
		a.sessions = sessions
	}

	metrics := telemetry.NewMetricInstruments(cfg.Name)
	client := api.NewClient(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(a.logger),
		api.WithMetrics(metrics),
	)

	hostCfg := web.ConfigFrom(cfg)
	hostCfg.Version = Version
	a.web, err = web.New(hostCfg, client, a.sessions,
		web.WithLogger(a.logger),
		web.WithMetrics(metrics),
	)
	if err != nil {
		_ = a.sessions.Close()
		_ = tracing.Shutdown(ctx)
		return nil, err
	}
	return a, nil
}

// Handler is the full HTTP handler, tracing included
func (a *App) Handler() http.Handler {
	return a.web.Handler()
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully within HTTP.ShutdownTimeout
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.ListenAddress())
	if err != nil {
		return core.NewOpError("storefront.Run", "listen", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      a.Handler(),
		ReadTimeout:  a.config.HTTP.ReadTimeout,
		WriteTimeout: a.config.HTTP.WriteTimeout,
		IdleTimeout:  a.config.HTTP.IdleTimeout,
	}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	core.LogInfo(ctx, a.logger, "Starting storefront", map[string]interface{}{
		"address":  ln.Addr().String(),
		"api":      a.config.API.URL,
		"sessions": a.config.Session.Provider,
		"tracing":  a.tracing.Exporter(),
		"metrics":  a.tracing.MetricsEnabled(),
		"version":  Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := a.config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the server, then releases the session store and flushes
// pending spans. Safe to call when the server never started.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.server = nil
	a.mu.Unlock()

	var errs []error
	if srv != nil {
		core.LogInfo(ctx, a.logger, "Shutting down storefront", nil)
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := a.sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("session store: %w", err))
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}
