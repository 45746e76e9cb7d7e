// Package telemetry wires OpenTelemetry tracing and metrics into the
// storefront: the browser-facing server, and the client it uses to call
// the commerce API.
//
// # Server Side
//
// The web host wraps its gin engine so every page request gets a span:
//
//	handler := telemetry.TracingMiddlewareWithConfig("storefront", &telemetry.TracingMiddlewareConfig{
//	    ExcludedPaths: []string{"/health"},
//	})(engine)
//
// # Client Side
//
// The API client sends every request through NewTracedHTTPClient so the
// traceparent header reaches the backend and the two halves join up.
//
// Call NewProvider before either is used. Without it the global providers
// are no-ops and nothing is exported.
package telemetry

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TracingMiddlewareConfig configures the tracing middleware behavior.
type TracingMiddlewareConfig struct {
	// ExcludedPaths lists URL paths that never get a span, e.g. "/health".
	ExcludedPaths []string

	// ExcludedPrefixes skips whole subtrees such as "/static/".
	ExcludedPrefixes []string

	// SpanNameFormatter customizes span names.
	// If nil, uses "HTTP {method} {path}".
	SpanNameFormatter func(operation string, r *http.Request) string
}

// TracingMiddleware returns HTTP middleware that extracts W3C trace context
// from incoming requests and opens a server span for each one.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	return TracingMiddlewareWithConfig(serviceName, nil)
}

// TracingMiddlewareWithConfig is TracingMiddleware with path exclusions and
// span naming.
func TracingMiddlewareWithConfig(serviceName string, config *TracingMiddlewareConfig) func(http.Handler) http.Handler {
	// Propagators are installed by NewProvider; otelhttp reads the global.
	var opts []otelhttp.Option

	if config != nil && (len(config.ExcludedPaths) > 0 || len(config.ExcludedPrefixes) > 0) {
		pathSet := make(map[string]bool, len(config.ExcludedPaths))
		for _, path := range config.ExcludedPaths {
			pathSet[path] = true
		}
		prefixes := config.ExcludedPrefixes
		opts = append(opts, otelhttp.WithFilter(func(r *http.Request) bool {
			if pathSet[r.URL.Path] {
				return false
			}
			for _, p := range prefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					return false
				}
			}
			return true
		}))
	}

	if config != nil && config.SpanNameFormatter != nil {
		opts = append(opts, otelhttp.WithSpanNameFormatter(config.SpanNameFormatter))
	} else {
		opts = append(opts, otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}))
	}

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName, opts...)
	}
}

// NewTracedHTTPClient creates an HTTP client that injects trace context
// into outgoing requests. A nil baseTransport gets a pooled default.
//
// The client carries no timeout of its own; callers bound requests with
// their context.
func NewTracedHTTPClient(baseTransport http.RoundTripper) *http.Client {
	if baseTransport == nil {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(baseTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "API " + r.Method + " " + r.URL.Path
			}),
		),
	}
}
