package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestLogger(level, format string) (*ProductionLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewProductionLogger(LoggingConfig{Level: level, Format: format}, "storefront")
	l.SetOutput(buf)
	return l, buf
}

func TestProductionLoggerLevels(t *testing.T) {
	l, buf := newTestLogger("warn", "text")

	l.Debug("debug", nil)
	l.Info("info", nil)
	assert.Empty(t, buf.String(), "below-threshold levels are dropped")

	l.Warn("careful", nil)
	l.Error("broken", nil)
	out := buf.String()
	assert.Contains(t, out, "[WARN] [storefront] careful")
	assert.Contains(t, out, "[ERROR] [storefront] broken")
}

func TestProductionLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	l, buf := newTestLogger("verbose", "text")
	l.Debug("hidden", nil)
	l.Info("shown", nil)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestProductionLoggerTextFields(t *testing.T) {
	l, buf := newTestLogger("debug", "text")

	l.Info("request", map[string]interface{}{
		"status": 200,
		"path":   "/products",
		"error":  errors.New("bad things"),
		"note":   "two words",
	})

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "path=/products")
	assert.Contains(t, line, `error="bad things"`)
	assert.Contains(t, line, `note="two words"`)
	// Sorted keys keep lines diffable
	assert.Less(t, strings.Index(line, "error="), strings.Index(line, "status="))
}

func TestProductionLoggerJSON(t *testing.T) {
	l, buf := newTestLogger("info", "json")
	child := l.WithComponent("api")

	child.Error("call failed", map[string]interface{}{
		"op":      "GET /cart/",
		"error":   errors.New("timeout"),
		"message": "must not overwrite",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "storefront", entry["service"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "call failed", entry["message"])
	assert.Equal(t, "GET /cart/", entry["op"])
	assert.Equal(t, "timeout", entry["error"])
}

func TestProductionLoggerContextAddsTrace(t *testing.T) {
	l, buf := newTestLogger("info", "json")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	fields := map[string]interface{}{"path": "/"}
	LogInfo(ctx, l, "traced", fields)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.NotContains(t, fields, "trace_id", "caller's map is not modified")
}

func TestWithComponentFallbacks(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, WithComponent(nil, "x"))
	assert.IsType(t, NoOpLogger{}, WithComponent(NoOpLogger{}, "x"))

	l, _ := newTestLogger("info", "text")
	child, ok := WithComponent(l, "session").(*ProductionLogger)
	require.True(t, ok)
	assert.Equal(t, "session", child.component)
	assert.Same(t, l.mu, child.mu, "children share the writer lock")
}
