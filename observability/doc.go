// Package observability provides OpenTelemetry tracing and metrics helpers
// for in-process hosts.
//
// Tracing:
//
//	tp, recorder := observability.NewRecordingTracerProvider(observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.Tracer(tp, "my-service").Start(ctx, "my.operation")
//	defer span.End()
//
// Metrics:
//
//	mp, reader := observability.NewManualMeterProvider()
//	metrics, err := observability.NewMetrics(observability.Meter(mp, "my-service"))
//	metrics.RecordRequestEnd(ctx, "GET", 200, duration)
//
// Nil providers fall back to the global otel providers.
package observability
