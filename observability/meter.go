package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric instrument names.
const (
	MetricDefinitionBuilds = "iockit.definition.builds"
	MetricBuildDuration    = "iockit.definition.build.duration"
	MetricResolutionErrors = "iockit.resolution.errors"
	MetricCacheHits        = "iockit.cache.hits"
	MetricAttrDefinition   = "definition"
	MetricAttrStatus       = "status"
	MetricAttrCode         = "code"
	MetricStatusOK         = "ok"
	MetricStatusError      = "error"
)

// ContainerMetrics holds the instruments recorded by a container. All
// methods are safe on a nil receiver, which records nothing.
type ContainerMetrics struct {
	builds        metric.Int64Counter
	buildDuration metric.Float64Histogram
	errorTotal    metric.Int64Counter
	cacheHits     metric.Int64Counter
}

// NewContainerMetrics creates the container instruments on the given meter.
func NewContainerMetrics(meter metric.Meter) (*ContainerMetrics, error) {
	builds, err := meter.Int64Counter(MetricDefinitionBuilds,
		metric.WithDescription("Factory executions by definition and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDefinitionBuilds, err)
	}

	buildDuration, err := meter.Float64Histogram(MetricBuildDuration,
		metric.WithDescription("Duration of factory executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricBuildDuration, err)
	}

	errorTotal, err := meter.Int64Counter(MetricResolutionErrors,
		metric.WithDescription("Failed lookups by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResolutionErrors, err)
	}

	cacheHits, err := meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Lookups served from the singleton cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCacheHits, err)
	}

	return &ContainerMetrics{
		builds:        builds,
		buildDuration: buildDuration,
		errorTotal:    errorTotal,
		cacheHits:     cacheHits,
	}, nil
}

// RecordBuild records one factory execution. err is the factory outcome.
func (m *ContainerMetrics) RecordBuild(ctx context.Context, definition string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := MetricStatusOK
	if err != nil {
		status = MetricStatusError
	}
	m.builds.Add(ctx, 1, metric.WithAttributes(
		attribute.String(MetricAttrDefinition, definition),
		attribute.String(MetricAttrStatus, status),
	))
	m.buildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(MetricAttrDefinition, definition),
	))
}

// RecordResolutionError records a failed lookup under the error's code.
func (m *ContainerMetrics) RecordResolutionError(ctx context.Context, err error) {
	if m == nil || err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "UNKNOWN"
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(MetricAttrCode, code),
	))
}

// RecordCacheHit records a lookup answered without running a factory.
func (m *ContainerMetrics) RecordCacheHit(ctx context.Context, definition string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String(MetricAttrDefinition, definition),
	))
}
