package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/itsneelabh/storefront/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exporter names reported by Provider.Exporter
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Provider owns the process-wide tracer and meter providers
type Provider struct {
	tracer        trace.Tracer
	traceProvider *sdktrace.TracerProvider // nil when tracing is disabled
	meterProvider *sdkmetric.MeterProvider // nil when no reader is configured
	exporter      string
}

// ProviderOption customizes NewProvider
type ProviderOption func(*providerOptions)

type providerOptions struct {
	stdout  io.Writer
	logger  core.Logger
	version string
	reader  sdkmetric.Reader
}

// WithServiceVersion sets the service.version resource attribute
func WithServiceVersion(v string) ProviderOption {
	return func(o *providerOptions) { o.version = v }
}

// WithStdoutWriter redirects the development exporter (useful for testing)
func WithStdoutWriter(w io.Writer) ProviderOption {
	return func(o *providerOptions) { o.stdout = w }
}

// WithMetricReader collects metrics through r in addition to any OTLP
// exporter. Tests pass an sdkmetric.ManualReader.
func WithMetricReader(r sdkmetric.Reader) ProviderOption {
	return func(o *providerOptions) { o.reader = r }
}

// WithLogger reports exporter selection through the given logger
func WithLogger(l core.Logger) ProviderOption {
	return func(o *providerOptions) { o.logger = l }
}

// NewProvider picks an exporter from configuration and installs the result
// as the global tracer provider along with W3C propagators:
//   - OTLP over gRPC when telemetry is enabled with an endpoint
//   - pretty-printed stdout when development tracing is on
//   - a no-op provider otherwise
//
// Metrics go to a global meter provider only when OTLP is enabled or a
// reader was supplied; otherwise otel's default no-op meter stays in place.
func NewProvider(ctx context.Context, serviceName string, cfg core.TelemetryConfig, dev core.DevelopmentConfig, opts ...ProviderOption) (*Provider, error) {
	o := &providerOptions{stdout: os.Stdout, logger: core.NoOpLogger{}, version: "development"}
	for _, opt := range opts {
		opt(o)
	}
	if cfg.ServiceName != "" {
		serviceName = cfg.ServiceName
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var (
		exporter sdktrace.SpanExporter
		kind     string
		err      error
	)
	switch {
	case cfg.Enabled && cfg.Endpoint != "":
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
		kind = ExporterOTLP
	case dev.TraceToStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(o.stdout), stdouttrace.WithPrettyPrint())
		kind = ExporterStdout
	default:
		noopProvider := noop.NewTracerProvider()
		otel.SetTracerProvider(noopProvider)
		o.logger.Debug("Tracing disabled", map[string]interface{}{"service": serviceName})
		p := &Provider{tracer: noopProvider.Tracer(serviceName), exporter: ExporterNone}
		if o.reader != nil {
			res, err := newResource(ctx, serviceName, o.version)
			if err != nil {
				return nil, err
			}
			p.meterProvider = installMeterProvider(res, o.reader)
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", kind, err)
	}

	res, err := newResource(ctx, serviceName, o.version)
	if err != nil {
		return nil, err
	}

	rate := cfg.SamplingRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)
	otel.SetTracerProvider(tp)

	var readers []sdkmetric.Reader
	if kind == ExporterOTLP {
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create otlp metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(metricExporter))
	}
	if o.reader != nil {
		readers = append(readers, o.reader)
	}

	o.logger.Info("Tracing enabled", map[string]interface{}{
		"service":  serviceName,
		"exporter": kind,
		"endpoint": cfg.Endpoint,
		"sampling": rate,
		"metrics":  len(readers) > 0,
	})

	return &Provider{
		tracer:        tp.Tracer(serviceName),
		traceProvider: tp,
		meterProvider: installMeterProvider(res, readers...),
		exporter:      kind,
	}, nil
}

func newResource(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// installMeterProvider sets the global meter provider when there is at
// least one reader to collect from
func installMeterProvider(res *resource.Resource, readers ...sdkmetric.Reader) *sdkmetric.MeterProvider {
	if len(readers) == 0 {
		return nil
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	return mp
}

// Tracer returns the tracer for application spans
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Exporter reports which exporter was selected
func (p *Provider) Exporter() string {
	return p.exporter
}

// MetricsEnabled reports whether a meter provider was installed
func (p *Provider) MetricsEnabled() bool {
	return p != nil && p.meterProvider != nil
}

// Shutdown flushes pending spans and metrics
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	if p.traceProvider != nil {
		if err := p.traceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
