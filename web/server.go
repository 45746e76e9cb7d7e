// Package web is the browser-facing host. It binds gin routes to the page
// controllers in views, keeps each browser's session behind a cookie, turns
// controller notifications into flashes and controller navigation into
// 303 redirects, and renders the result with html/template.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
	"github.com/itsneelabh/storefront/telemetry"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Config is the subset of core.Config the host needs
type Config struct {
	ServiceName     string
	Version         string
	CookieName      string
	CookieSecure    bool
	SessionTTL      time.Duration
	HealthCheckPath string
	PublishableKey  string
	DevMode         bool
}

// ConfigFrom extracts the host settings from the application config
func ConfigFrom(c *core.Config) Config {
	name := c.Telemetry.ServiceName
	if name == "" {
		name = c.Name
	}
	return Config{
		ServiceName:     name,
		CookieName:      c.Session.CookieName,
		CookieSecure:    c.Session.CookieSecure,
		SessionTTL:      c.Session.TTL,
		HealthCheckPath: c.HTTP.HealthCheckPath,
		PublishableKey:  c.Payment.PublishableKey,
		DevMode:         c.Development.Enabled,
	}
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "storefront"
	}
	if c.CookieName == "" {
		c.CookieName = "storefront_session"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.HealthCheckPath == "" {
		c.HealthCheckPath = "/health"
	}
	return c
}

// Server serves the storefront pages
type Server struct {
	cfg      Config
	engine   *gin.Engine
	client   *api.Client
	sessions session.Manager
	logger   core.Logger
	metrics  *telemetry.MetricInstruments
	payments *claims
}

// Option configures a Server
type Option func(*Server)

func WithLogger(l core.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = core.WithComponent(l, "web")
		}
	}
}

// WithMetrics records page-level failures
func WithMetrics(m *telemetry.MetricInstruments) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds the engine and registers every route. client is the
// anonymous API client; each request derives an authenticated copy from it.
func New(cfg Config, client *api.Client, sessions session.Manager, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, core.NewOpError("web.New", "config", fmt.Errorf("api client: %w", core.ErrMissingConfiguration))
	}
	if sessions == nil {
		return nil, core.NewOpError("web.New", "config", fmt.Errorf("session manager: %w", core.ErrMissingConfiguration))
	}

	s := &Server{
		cfg:      cfg.withDefaults(),
		client:   client,
		sessions: sessions,
		logger:   core.NoOpLogger{},
		payments: newClaims(time.Hour),
	}
	for _, opt := range opts {
		opt(s)
	}

	renderer, err := LoadTemplates(assets)
	if err != nil {
		return nil, core.NewOpError("web.New", "templates", err)
	}

	if !s.cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.HTMLRender = renderer
	engine.Use(
		requestID(),
		recovery(s.logger),
		requestLogger(s.logger, s.cfg.DevMode),
		securityHeaders(defaultSecurityHeaders()),
	)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, core.NewOpError("web.New", "static", err)
	}
	engine.StaticFS("/static", http.FS(static))
	engine.GET(s.cfg.HealthCheckPath, s.health)

	pages := engine.Group("/", s.sessionMiddleware())
	s.routes(pages)
	engine.NoRoute(s.notFound)

	s.engine = engine
	return s, nil
}

// Engine exposes the gin engine, without tracing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler is the engine wrapped in server-side tracing
func (s *Server) Handler() http.Handler {
	return telemetry.TracingMiddlewareWithConfig(s.cfg.ServiceName, &telemetry.TracingMiddlewareConfig{
		ExcludedPaths:    []string{s.cfg.HealthCheckPath},
		ExcludedPrefixes: []string{"/static/"},
	})(s.engine)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   s.cfg.ServiceName,
		"version":   s.cfg.Version,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) notFound(c *gin.Context) {
	s.renderError(c, http.StatusNotFound, "Page not found")
}
