package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names emitted by the storefront
const (
	MetricAPIRequests = "storefront.api.requests"
	MetricAPIDuration = "storefront.api.duration_ms"
	MetricPageErrors  = "storefront.page.errors"
)

// MetricInstruments caches instruments by name so hot paths do not
// re-create them on every call
type MetricInstruments struct {
	meter      metric.Meter
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	mu         sync.RWMutex
}

// NewMetricInstruments creates an instrument cache on the global meter provider
func NewMetricInstruments(meterName string) *MetricInstruments {
	return NewMetricInstrumentsWithMeter(otel.Meter(meterName))
}

// NewMetricInstrumentsWithMeter uses an explicit meter
func NewMetricInstrumentsWithMeter(meter metric.Meter) *MetricInstruments {
	return &MetricInstruments{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// RecordCounter increments a counter metric
func (m *MetricInstruments) RecordCounter(ctx context.Context, name string, value int64, opts ...metric.AddOption) error {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		// Double-check after acquiring write lock
		if counter, exists = m.counters[name]; !exists {
			var err error
			counter, err = m.meter.Int64Counter(name)
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("failed to create counter %s: %w", name, err)
			}
			m.counters[name] = counter
		}
		m.mu.Unlock()
	}

	counter.Add(ctx, value, opts...)
	return nil
}

// RecordHistogram records a value distribution such as latency
func (m *MetricInstruments) RecordHistogram(ctx context.Context, name string, value float64, opts ...metric.RecordOption) error {
	m.mu.RLock()
	histogram, exists := m.histograms[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		if histogram, exists = m.histograms[name]; !exists {
			var err error
			histogram, err = m.meter.Float64Histogram(name, metric.WithUnit("ms"))
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("failed to create histogram %s: %w", name, err)
			}
			m.histograms[name] = histogram
		}
		m.mu.Unlock()
	}

	histogram.Record(ctx, value, opts...)
	return nil
}

// RecordAPICall counts one API round trip and its latency. outcome is
// "ok" or the error kind the client assigned.
func (m *MetricInstruments) RecordAPICall(ctx context.Context, method, op, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)
	_ = m.RecordCounter(ctx, MetricAPIRequests, 1, attrs)
	_ = m.RecordHistogram(ctx, MetricAPIDuration, float64(elapsed.Microseconds())/1000, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("op", op),
	))
}

// RecordPageError counts a failure surfaced to the user on a page
func (m *MetricInstruments) RecordPageError(ctx context.Context, page, kind string) {
	_ = m.RecordCounter(ctx, MetricPageErrors, 1, metric.WithAttributes(
		attribute.String("page", page),
		attribute.String("kind", kind),
	))
}
