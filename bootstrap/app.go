package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
	"github.com/kbukum/iockit/resilience"
	"github.com/kbukum/iockit/version"
)

// App represents a generic application with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding config.ServiceConfig automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithCatalog(shop.Catalog()))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*ShopConfig]) error {
//	    // a.Cfg is *ShopConfig, fully typed
//	    return shop.Register(a.Container)
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name      string
	Version   string
	Cfg       C
	Container *di.Container
	Catalog   *di.Catalog
	Logger    *logger.Logger
	Summary   *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	stopOnce       sync.Once
	stopErr        error
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// creates the container.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         version.Resolve(base.Version),
		Cfg:             cfg,
		Catalog:         o.catalog,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	if o.container != nil {
		app.Container = o.container
	} else {
		c, err := newContainer(base, app.Logger)
		if err != nil {
			return nil, err
		}
		app.Container = c
	}

	app.Summary = NewSummary(base.Name, app.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// newContainer builds the container described by the config. Instruments
// come from the global meter, which forwards to the provider installed at
// startup.
func newContainer(base *config.ServiceConfig, log *logger.Logger) (*di.Container, error) {
	opts := []di.Option{
		di.WithLogger(log),
		di.WithID(base.Container.ID),
		di.AllowOverwrite(base.Container.AllowOverwrite),
	}
	if base.Tracing.Enabled && base.Tracing.Metrics {
		metrics, err := observability.NewContainerMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return nil, fmt.Errorf("creating container metrics: %w", err)
		}
		opts = append(opts, di.WithMetrics(metrics))
	}
	return di.New(opts...), nil
}

// OnConfigure registers a callback to run during the configure phase, after
// the definition table is bound. Use it to register definitions from code.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that the dependency graph is complete and acyclic.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	if err := a.Container.Validate(); err != nil {
		return fmt.Errorf("dependency graph: %w", err)
	}
	return nil
}

// Run executes the full application lifecycle for long-running services:
// Initialize → OnStart hooks → Configure → ReadyCheck → OnReady hooks →
// Block on signal → OnStop hooks → Graceful Shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	// Block until shutdown signal
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop(context.Background())
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run, it does not block on shutdown signals: it runs the task
// function and gracefully shuts down when the task completes or the context
// is canceled (e.g., via SIGINT/SIGTERM).
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg, bootstrap.WithCatalog(shop.Catalog()))
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return placeOrders(ctx, app.Container)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	// Set up signal-based cancellation for the task
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(context.Background()); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":         a.Name,
		"version":      a.Version,
		"container_id": a.Container.ID(),
	})

	// Phase 1: Initialize telemetry and bind the definition table
	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// Phase 2: Configure, run business-layer setup callbacks
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	// Ready check: an incomplete or cyclic graph is fatal
	if err := a.ReadyCheck(ctx); err != nil {
		return err
	}

	if err := a.preinstantiate(ctx); err != nil {
		return fmt.Errorf("preinstantiation failed: %w", err)
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()

	return nil
}

// preinstantiate builds every definition when configured to, retrying
// failed factories. Instances built by an earlier attempt stay cached.
func (a *App[C]) preinstantiate(ctx context.Context) error {
	cc := a.Cfg.GetServiceConfig().Container
	if !cc.Preinstantiate {
		return nil
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = max(cc.PreinstantiateAttempts, 1)
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		a.Logger.Warn("Preinstantiation failed, retrying", map[string]interface{}{
			"attempt":    attempt,
			"definition": errors.DefinitionOf(err),
			"backoff":    backoff.String(),
			"error":      err.Error(),
		})
	}
	return resilience.RetryFunc(ctx, retry, func() error {
		return a.Container.Preinstantiate(ctx)
	})
}

// initialize starts telemetry and registers the declarative definitions (Phase 1).
func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 1: Binding definitions")

	if err := a.initTelemetry(ctx); err != nil {
		return err
	}
	if err := a.bindDefinitions(); err != nil {
		return err
	}

	a.Logger.Info("Phase 1: Definitions bound", map[string]interface{}{
		"count": len(a.Container.Names()),
	})
	return nil
}

// bindDefinitions registers every table entry with its catalog factory, in
// declaration order.
func (a *App[C]) bindDefinitions() error {
	defs := a.Cfg.GetServiceConfig().Container.Definitions
	if len(defs) == 0 {
		return nil
	}
	if a.Catalog == nil {
		return fmt.Errorf("%d definitions configured but no catalog provided", len(defs))
	}
	for _, d := range defs {
		opts := []di.RegisterOption{di.WithRoles(d.Roles...)}
		if d.Primary {
			opts = append(opts, di.AsPrimary())
		}
		if err := a.Catalog.Bind(a.Container, d.Name, d.Factory, d.DependsOn, opts...); err != nil {
			return fmt.Errorf("binding %q: %w", d.Name, err)
		}
	}
	return nil
}

// initTelemetry installs OTLP trace and metric providers when tracing is
// enabled.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	tc := base.Tracing
	if !tc.Enabled {
		return nil
	}

	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    base.Name,
		ServiceVersion: base.Version,
		Environment:    base.Environment,
		Endpoint:       tc.Endpoint,
		Insecure:       tc.Insecure,
		SampleRate:     tc.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	a.tracerProvider = tp

	if !tc.Metrics {
		return nil
	}
	interval, err := time.ParseDuration(tc.MetricsInterval)
	if err != nil {
		return fmt.Errorf("tracing.metrics_interval: %w", err)
	}
	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    base.Name,
		ServiceVersion: base.Version,
		Environment:    base.Environment,
		Endpoint:       tc.Endpoint,
		Insecure:       tc.Insecure,
		Interval:       interval,
	})
	if err != nil {
		return fmt.Errorf("meter: %w", err)
	}
	a.meterProvider = mp
	return nil
}

// DisplaySummary prints the startup summary built from the container.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Container, a.Logger)
}

// configure runs registered configuration callbacks (Phase 2).
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 2: Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 2: Configuration complete")
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
// Only the first call does any work.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop(ctx)
}

// abort releases what a failed startup may have created. Stop hooks do not
// run because the application never became ready.
func (a *App[C]) abort() {
	a.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
		defer cancel()
		_ = a.Container.Close()
		a.stopErr = a.shutdownTelemetry(ctx)
	})
}

// stop gracefully shuts down within the graceful timeout.
func (a *App[C]) stop(parent context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.Info("Shutting down application", map[string]interface{}{
			"timeout": a.gracefulTimeout.String(),
		})

		ctx, cancel := context.WithTimeout(parent, a.gracefulTimeout)
		defer cancel()

		var shutdownErr error

		if err := runHooks(ctx, a.onStop); err != nil {
			a.Logger.Error("OnStop hook error", map[string]interface{}{
				"error": err.Error(),
			})
			shutdownErr = err
		}

		if err := a.Container.Close(); err != nil {
			a.Logger.Error("Container close error", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}

		if err := a.shutdownTelemetry(ctx); err != nil {
			a.Logger.Error("Telemetry shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}

		a.Logger.Info("Application shutdown complete")
		a.stopErr = shutdownErr
	})
	return a.stopErr
}

// shutdownTelemetry flushes and stops the providers installed at startup.
func (a *App[C]) shutdownTelemetry(ctx context.Context) error {
	var firstErr error
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("meter provider: %w", err)
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("tracer provider: %w", err)
		}
	}
	return firstErr
}
