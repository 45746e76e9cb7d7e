package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger is the structured logger used throughout the storefront.
// Fields are free-form key/value pairs.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// ContextLogger adds trace correlation when a context is available
type ContextLogger interface {
	Logger
	InfoWithContext(ctx context.Context, msg string, fields map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, fields map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, fields map[string]interface{})
}

// ComponentAwareLogger can derive a logger tagged with a component name
type ComponentAwareLogger interface {
	Logger
	WithComponent(component string) Logger
}

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// ProductionLogger writes leveled logs as text for local development or
// JSON lines for log aggregation.
type ProductionLogger struct {
	level     string
	format    string
	service   string
	component string
	output    io.Writer
	mu        *sync.Mutex
}

// NewProductionLogger builds a logger from logging configuration
func NewProductionLogger(cfg LoggingConfig, service string) *ProductionLogger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	level := strings.ToUpper(cfg.Level)
	if _, ok := levelRank[level]; !ok {
		level = "INFO"
	}
	format := strings.ToLower(cfg.Format)
	if format != "json" {
		format = "text"
	}
	return &ProductionLogger{
		level:   level,
		format:  format,
		service: service,
		output:  out,
		mu:      &sync.Mutex{},
	}
}

// SetOutput changes the output writer (useful for testing)
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// WithComponent returns a child logger sharing output and level
func (l *ProductionLogger) WithComponent(component string) Logger {
	return &ProductionLogger{
		level:     l.level,
		format:    l.format,
		service:   l.service,
		component: component,
		output:    l.output,
		mu:        l.mu,
	}
}

func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *ProductionLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("INFO", msg, withTrace(ctx, fields))
}

func (l *ProductionLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, withTrace(ctx, fields))
}

func (l *ProductionLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("WARN", msg, withTrace(ctx, fields))
}

func (l *ProductionLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, withTrace(ctx, fields))
}

func (l *ProductionLogger) enabled(level string) bool {
	return levelRank[level] >= levelRank[l.level]
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	if !l.enabled(level) {
		return
	}
	timestamp := time.Now().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == "json" {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level,
			"service":   l.service,
			"message":   msg,
		}
		if l.component != "" {
			entry["component"] = l.component
		}
		for k, v := range fields {
			if _, reserved := entry[k]; reserved {
				continue
			}
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(l.output, string(data))
		}
		return
	}

	var b strings.Builder
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok && strings.ContainsAny(s, " \t") {
			fmt.Fprintf(&b, " %s=%q", k, s)
			continue
		}
		if err, ok := v.(error); ok {
			fmt.Fprintf(&b, " %s=%q", k, err.Error())
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}

	tag := l.service
	if l.component != "" {
		tag = l.service + ":" + l.component
	}
	fmt.Fprintf(l.output, "%s [%s] [%s] %s%s\n", timestamp, level, tag, msg, b.String())
}

// withTrace copies fields and adds trace_id/span_id from the active span
func withTrace(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return fields
	}
	out := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["trace_id"] = sc.TraceID().String()
	out["span_id"] = sc.SpanID().String()
	return out
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]interface{})  {}
func (NoOpLogger) Error(string, map[string]interface{}) {}
func (NoOpLogger) Warn(string, map[string]interface{})  {}
func (NoOpLogger) Debug(string, map[string]interface{}) {}

// WithComponent tags the logger with a component when it supports it
func WithComponent(l Logger, component string) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	if cl, ok := l.(ComponentAwareLogger); ok {
		return cl.WithComponent(component)
	}
	return l
}

// LogInfo logs with trace correlation if the logger supports it
func LogInfo(ctx context.Context, l Logger, msg string, fields map[string]interface{}) {
	if cl, ok := l.(ContextLogger); ok {
		cl.InfoWithContext(ctx, msg, fields)
		return
	}
	l.Info(msg, fields)
}

// LogError logs with trace correlation if the logger supports it
func LogError(ctx context.Context, l Logger, msg string, fields map[string]interface{}) {
	if cl, ok := l.(ContextLogger); ok {
		cl.ErrorWithContext(ctx, msg, fields)
		return
	}
	l.Error(msg, fields)
}

// LogWarn logs with trace correlation if the logger supports it
func LogWarn(ctx context.Context, l Logger, msg string, fields map[string]interface{}) {
	if cl, ok := l.(ContextLogger); ok {
		cl.WarnWithContext(ctx, msg, fields)
		return
	}
	l.Warn(msg, fields)
}
