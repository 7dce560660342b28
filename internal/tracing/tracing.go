package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName is the service name used on the exported spans.
const DefaultServiceName = "patchcheck"

// NoopTracer is a tracer that doesn't record anything.
var NoopTracer trace.Tracer = noop.NewTracerProvider().Tracer(DefaultServiceName)

// ProviderConfig is the configuration for the OTLP tracer provider.
type ProviderConfig struct {
	// Endpoint is the OTLP HTTP collector endpoint (host:port). If empty tracing is disabled.
	Endpoint string
	// Insecure disables TLS on the collector connection.
	Insecure    bool
	ServiceName string
	// SampleRate is the ratio of traces sampled (0, 1], defaults to 1.
	SampleRate float64
	// Exporter overrides the OTLP exporter (used on tests).
	Exporter sdktrace.SpanExporter
}

func (c *ProviderConfig) defaults() error {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1")
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	return nil
}

// Provider holds the tracer provider, it's not set as the global one.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewProvider returns a tracer provider exporting spans with OTLP over HTTP. When no
// endpoint nor exporter is configured the provider only returns noop tracers.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	exporter := cfg.Exporter
	if exporter == nil {
		if cfg.Endpoint == "" {
			return &Provider{tracer: NoopTracer}, nil
		}

		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("could not create OTLP exporter: %w", err)
		}
		exporter = exp
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("could not create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	return &Provider{
		provider: tp,
		tracer:   tp.Tracer(cfg.ServiceName),
	}, nil
}

// Tracer returns the tracer used to create the pipeline spans.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return NoopTracer
	}
	return p.tracer
}

// ForceFlush exports the pending spans.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.ForceFlush(ctx)
}

// Shutdown flushes the pending spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// End ends the span marking it as failed when err is not nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
