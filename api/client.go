// Package api is a typed client for the commerce REST API.
//
// Every call goes through one request helper that attaches the bearer
// token, encodes the body, and turns a non-2xx response into an *APIError
// whose Kind is decided from the status code. There are no retries, no
// caching and no de-duplication: each call is one round trip.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/telemetry"
)

// Client talks to the API on behalf of one user. The zero token is an
// anonymous client; WithToken derives an authenticated copy that shares the
// connection pool.
type Client struct {
	origin     string
	httpClient *http.Client
	token      string
	timeout    time.Duration
	logger     core.Logger
	metrics    *telemetry.MetricInstruments
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the traced default client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for request diagnostics
func WithLogger(l core.Logger) ClientOption {
	return func(c *Client) { c.logger = core.WithComponent(l, "api") }
}

// WithMetrics records per-call counters and latency
func WithMetrics(m *telemetry.MetricInstruments) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates an anonymous client for the API at origin
func NewClient(origin string, opts ...ClientOption) *Client {
	c := &Client{
		origin: strings.TrimRight(origin, "/"),
		logger: core.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = telemetry.NewTracedHTTPClient(nil)
	}
	return c
}

// WithToken returns a copy of c that authenticates as the token's owner.
// An empty token yields an anonymous copy.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token this client sends, if any
func (c *Client) Token() string {
	return c.token
}

// Origin returns the API origin requests are sent to
func (c *Client) Origin() string {
	return c.origin
}

// request describes one call
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// do sends a JSON request and decodes a JSON response into out.
// in and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	req := request{op: op, method: method, path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &APIError{Op: op, Method: method, Path: path, Kind: KindValidation, Message: "invalid request body", Err: err}
		}
		req.body = bytes.NewReader(data)
	}
	return c.send(ctx, req, out)
}

// doQuery is do with query parameters and no body
func (c *Client) doQuery(ctx context.Context, op, method, path string, query url.Values, out interface{}) error {
	return c.send(ctx, request{op: op, method: method, path: path, query: query}, out)
}

// doForm posts an urlencoded form
func (c *Client) doForm(ctx context.Context, op, path string, form url.Values, out interface{}) error {
	return c.send(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, out)
}

func (c *Client) send(ctx context.Context, r request, out interface{}) (err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.origin + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return &APIError{Op: r.op, Method: r.method, Path: r.path, Kind: KindTransport, Message: err.Error(), Err: err}
	}
	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).String()
		}
		if c.metrics != nil {
			c.metrics.RecordAPICall(ctx, r.method, r.op, outcome, time.Since(start))
		}
	}()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		core.LogWarn(ctx, c.logger, "API request failed", map[string]interface{}{
			"op":     r.op,
			"method": r.method,
			"path":   r.path,
			"error":  err,
		})
		return &APIError{
			Op:      r.op,
			Method:  r.method,
			Path:    r.path,
			Kind:    KindTransport,
			Message: transportMessage(err),
			Err:     fmt.Errorf("%w: %v", core.ErrConnectionFailed, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: r.op, Method: r.method, Path: r.path, Status: resp.StatusCode, Kind: KindTransport, Message: transportMessage(err), Err: err}
	}

	c.logger.Debug("API response", map[string]interface{}{
		"op":          r.op,
		"method":      r.method,
		"path":        r.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:      r.op,
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Kind:    kindForStatus(resp.StatusCode),
			Message: errorMessage(resp, body),
			Err:     core.ErrRequestFailed,
		}
		if apiErr.Kind == KindServer {
			core.LogError(ctx, c.logger, "API server error", map[string]interface{}{
				"op":     r.op,
				"status": resp.StatusCode,
				"error":  apiErr.Message,
			})
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{
			Op:      r.op,
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Kind:    KindDecode,
			Message: "unexpected response from server",
			Err:     err,
		}
	}
	return nil
}

// errorMessage extracts "detail" from an error body. FastAPI sends either a
// string or a list of validation errors; anything else falls back to the
// status text.
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string        `json:"msg"`
			Loc []interface{} `json:"loc"`
		}
		if json.Unmarshal(payload.Detail, &list) == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg == "" {
					continue
				}
				if n := len(item.Loc); n > 0 {
					msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[n-1], item.Msg))
					continue
				}
				msgs = append(msgs, item.Msg)
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "Unknown Error"
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return "could not reach the server"
	}
}
