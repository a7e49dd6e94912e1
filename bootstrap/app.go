package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/techdocs/component"
	"github.com/kbukum/techdocs/config"
	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/discovery/static"
	"github.com/kbukum/techdocs/logger"
	"github.com/kbukum/techdocs/observability"
	"github.com/kbukum/techdocs/publisher"
	"github.com/kbukum/techdocs/version"
)

// App owns the lifecycle of one techdocs command.
type App struct {
	Name       string
	Version    string
	Cfg        *config.AppConfig
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	discovery       discovery.URLDiscovery
	out             io.Writer
	gracefulTimeout time.Duration
	publisher       *publisher.Component

	onStart   []Hook
	onStop    []Hook
	telemetry []Hook
}

// NewApp creates an application from a loaded config. It applies
// defaults, validates the config and initializes the logger.
func NewApp(cfg *config.AppConfig, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		discovery:       o.discovery,
		out:             o.out,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Version == "" {
		app.Version = version.Get().Short()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if app.out == nil {
		app.out = os.Stderr
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&cfg.Logging, cfg.Name)
	}

	if app.discovery == nil && cfg.Discovery.BaseURL != "" {
		d, err := static.NewProvider(cfg.Discovery)
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}
		app.discovery = d
	}

	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(app.Name, app.Version)
	return app, nil
}

// Publisher returns the running publisher. It is nil until startup has
// completed.
func (a *App) Publisher() publisher.Publisher {
	if a.publisher == nil {
		return nil
	}
	return a.publisher.Publisher()
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts the application, runs task and shuts down when the task
// completes. SIGINT/SIGTERM cancel the task's context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		// Components that did start must still be released.
		_ = a.stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// DisplaySummary writes the startup summary with live component health.
func (a *App) DisplaySummary(ctx context.Context) {
	a.Summary.Display(ctx, a.out, a.Components)
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Debug("starting application", logger.Fields("name", a.Name, "version", a.Version))

	metrics, err := a.setupTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	a.publisher = publisher.NewComponent(a.Cfg.TechDocs, publisher.Deps{
		Logger:    a.Logger,
		Discovery: a.discovery,
		Metrics:   metrics,
	})
	if err := a.Components.Register(a.publisher); err != nil {
		return err
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	a.Summary.SetStartupDuration(time.Since(start))
	return nil
}

// setupTelemetry installs the OTLP tracer and meter providers when enabled
// and returns the publisher instruments. With telemetry disabled the
// instruments record into the global no-op provider.
func (a *App) setupTelemetry(ctx context.Context) (*observability.PublisherMetrics, error) {
	obs := a.Cfg.Observability
	if obs.Enabled {
		tp, err := observability.InitTracer(ctx, obs.TracerConfig(a.Name, a.Version, a.Cfg.Environment), a.Logger)
		if err != nil {
			return nil, err
		}
		a.telemetry = append(a.telemetry, tp.Shutdown)

		mp, err := observability.InitMeter(ctx, obs.MeterConfig(a.Name, a.Version, a.Cfg.Environment), a.Logger)
		if err != nil {
			return nil, err
		}
		a.telemetry = append(a.telemetry, mp.Shutdown)
	}
	return observability.NewPublisherMetrics(observability.Meter(publisher.PluginID))
}

// stop shuts down hooks, components and telemetry within the graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	// Flush telemetry last so shutdown spans are exported.
	for _, flush := range a.telemetry {
		if err := flush(ctx); err != nil {
			a.Logger.Warn("telemetry shutdown error", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	a.telemetry = nil

	a.Logger.Debug("application shutdown complete")
	return shutdownErr
}
