package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerConfig configures an in-process tracer provider.
type TracerConfig struct {
	// ServiceName is the name of the service under test.
	ServiceName string
	// Environment is the configuration environment (Development, Staging, ...).
	Environment string
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64
}

// DefaultTracerConfig samples everything.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName: serviceName,
		Environment: "Development",
		SampleRate:  1.0,
	}
}

// NewTracerProvider builds a tracer provider for config. No exporter is
// attached; pass sdktrace.WithSpanProcessor or WithBatcher in opts. The
// global provider is left untouched.
func NewTracerProvider(config TracerConfig, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	var sampler sdktrace.Sampler
	switch {
	case config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SampleRate)
	}

	base := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(newResource(config.ServiceName, config.Environment)),
		sdktrace.WithSampler(sampler),
	}
	return sdktrace.NewTracerProvider(append(base, opts...)...)
}

// NewRecordingTracerProvider returns a provider whose finished spans are
// kept in memory by the returned recorder.
func NewRecordingTracerProvider(config TracerConfig) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return NewTracerProvider(config, sdktrace.WithSpanProcessor(recorder)), recorder
}

// newResource creates an OpenTelemetry resource with service metadata.
func newResource(serviceName, environment string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		attribute.String("environment", environment),
	)
}

// Propagator returns the W3C trace-context and baggage propagator.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// Tracer returns a named tracer from tp, or from the global provider when tp is nil.
func Tracer(tp trace.TracerProvider, name string) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(name)
}

// SetSpanAttribute sets an attribute on the current span in context.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case []string:
		span.SetAttributes(attribute.StringSlice(key, v))
	}
}

// SetSpanError records err on the current span in context and marks it failed.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		span.SetStatus(codes.Error, err.Error())
	}
}

// Common attribute keys.
const (
	AttrHTTPMethod   = "http.method"
	AttrHTTPTarget   = "http.target"
	AttrHTTPStatus   = "http.status_code"
	AttrRequestID    = "request.id"
	AttrDurationMs   = "duration_ms"
	AttrErrorMessage = "error.message"
)
