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

	"github.com/kbukum/techdocs/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
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

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			"service", config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// PublisherMetrics holds the instruments recorded by publisher operations.
type PublisherMetrics struct {
	filesUploaded   metric.Int64Counter
	uploadFailures  metric.Int64Counter
	publishDuration metric.Float64Histogram
	fetchTotal      metric.Int64Counter
}

// NewPublisherMetrics creates publisher instruments on the given meter.
func NewPublisherMetrics(meter metric.Meter) (*PublisherMetrics, error) {
	filesUploaded, err := meter.Int64Counter("techdocs.publish.files",
		metric.WithDescription("Files uploaded by publish operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating techdocs.publish.files counter: %w", err)
	}

	uploadFailures, err := meter.Int64Counter("techdocs.publish.failures",
		metric.WithDescription("Files that failed to upload"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating techdocs.publish.failures counter: %w", err)
	}

	publishDuration, err := meter.Float64Histogram("techdocs.publish.duration",
		metric.WithDescription("Duration of publish operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating techdocs.publish.duration histogram: %w", err)
	}

	fetchTotal, err := meter.Int64Counter("techdocs.fetch.total",
		metric.WithDescription("Fetch operations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating techdocs.fetch.total counter: %w", err)
	}

	return &PublisherMetrics{
		filesUploaded:   filesUploaded,
		uploadFailures:  uploadFailures,
		publishDuration: publishDuration,
		fetchTotal:      fetchTotal,
	}, nil
}

// RecordPublish records the outcome of one publish call.
func (m *PublisherMetrics) RecordPublish(ctx context.Context, backend string, uploaded, failed int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("backend", backend))
	m.filesUploaded.Add(ctx, int64(uploaded), attrs)
	if failed > 0 {
		m.uploadFailures.Add(ctx, int64(failed), attrs)
	}
	m.publishDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFetch records one fetch call with its status ("ok", "not_found", "error").
func (m *PublisherMetrics) RecordFetch(ctx context.Context, backend, status string) {
	if m == nil {
		return
	}
	m.fetchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}
