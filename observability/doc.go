// Package observability wires OpenTelemetry tracing and metrics for the
// container.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("shopdemo"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanContainerGet)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("shopdemo"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewContainerMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordBuild(ctx, "memberService", nil, elapsed)
package observability
