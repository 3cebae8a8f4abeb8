package di

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/iockit/observability"
)

func newTracedContainer(t *testing.T, opts ...Option) (*Container, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	opts = append(opts, WithTracer(tp.Tracer(observability.InstrumentationName)))
	return New(opts...), exporter
}

func TestContainerSpans(t *testing.T) {
	ctx := context.Background()
	c, exporter := newTracedContainer(t, WithID("traced"))
	mustRegister(t, c, "repo", nil, newRecorder().factory("repo"))
	mustRegister(t, c, "svc", []string{"repo"}, newRecorder().factory("svc"))

	if _, err := c.Get(ctx, "svc"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := c.Get(ctx, "svc"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var gets, builds int
	var cacheHits []bool
	for _, span := range exporter.GetSpans() {
		switch span.Name {
		case observability.SpanContainerGet:
			gets++
			for _, kv := range span.Attributes {
				if string(kv.Key) == observability.AttrCacheHit {
					cacheHits = append(cacheHits, kv.Value.AsBool())
				}
			}
		case observability.SpanContainerBuild:
			builds++
			if !span.Parent.IsValid() {
				t.Error("expected build span to have a parent")
			}
		}
	}
	if gets != 2 || builds != 2 {
		t.Errorf("expected 2 get and 2 build spans, got %d and %d", gets, builds)
	}
	if len(cacheHits) != 2 || cacheHits[0] || !cacheHits[1] {
		t.Errorf("expected cache miss then hit, got %v", cacheHits)
	}
}

func TestContainerSpans_Error(t *testing.T) {
	c, exporter := newTracedContainer(t)
	mustRegister(t, c, "bad", nil, func(context.Context, []any) (any, error) {
		return nil, fmt.Errorf("refused")
	})

	_, _ = c.Get(context.Background(), "bad")

	var errored int
	for _, span := range exporter.GetSpans() {
		if span.Status.Code == codes.Error {
			errored++
		}
	}
	if errored != 2 {
		t.Errorf("expected get and build spans to carry error status, got %d", errored)
	}
}

func TestContainerMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	metrics, err := observability.NewContainerMetrics(mp.Meter(observability.InstrumentationName))
	if err != nil {
		t.Fatalf("NewContainerMetrics failed: %v", err)
	}
	c := New(WithMetrics(metrics))
	mustRegister(t, c, "repo", nil, newRecorder().factory("repo"))

	_, _ = c.Get(ctx, "repo")
	_, _ = c.Get(ctx, "repo")
	_, _ = c.Get(ctx, "missing")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	if totals[observability.MetricDefinitionBuilds] != 1 {
		t.Errorf("expected 1 build, got %d", totals[observability.MetricDefinitionBuilds])
	}
	if totals[observability.MetricCacheHits] != 1 {
		t.Errorf("expected 1 cache hit, got %d", totals[observability.MetricCacheHits])
	}
	if totals[observability.MetricResolutionErrors] != 1 {
		t.Errorf("expected 1 resolution error, got %d", totals[observability.MetricResolutionErrors])
	}
}
