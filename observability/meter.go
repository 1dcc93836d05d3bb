package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/svcapp/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
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

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider must be shut down on exit.
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

	logger.Info("meter initialized", logger.Fields(
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

// LifecycleMetrics holds the instruments recorded by shutdown steps and
// dispose actions.
type LifecycleMetrics struct {
	stepTotal    metric.Int64Counter
	stepDuration metric.Float64Histogram
	failureTotal metric.Int64Counter
}

// NewLifecycleMetrics creates lifecycle instruments on the given meter.
func NewLifecycleMetrics(meter metric.Meter) (*LifecycleMetrics, error) {
	stepTotal, err := meter.Int64Counter("lifecycle.step.total",
		metric.WithDescription("Shutdown steps and dispose actions executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle.step.total counter: %w", err)
	}

	stepDuration, err := meter.Float64Histogram("lifecycle.step.duration",
		metric.WithDescription("Duration of shutdown steps and dispose actions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle.step.duration histogram: %w", err)
	}

	failureTotal, err := meter.Int64Counter("lifecycle.failure.total",
		metric.WithDescription("Shutdown steps and dispose actions that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle.failure.total counter: %w", err)
	}

	return &LifecycleMetrics{
		stepTotal:    stepTotal,
		stepDuration: stepDuration,
		failureTotal: failureTotal,
	}, nil
}

// RecordStep records one executed step. kind is "shutdown" or "dispose".
func (m *LifecycleMetrics) RecordStep(ctx context.Context, kind, name string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrKind, kind),
		attribute.String(AttrStep, name),
		attribute.String(AttrStatus, status),
	)
	m.stepTotal.Add(ctx, 1, attrs)
	m.stepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrKind, kind),
		attribute.String(AttrStep, name),
	))
	if err != nil {
		m.failureTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrKind, kind),
			attribute.String(AttrStep, name),
		))
	}
}

var (
	lifecycleOnce    sync.Once
	lifecycleMetrics *LifecycleMetrics
)

// Lifecycle returns the process-wide lifecycle instruments. They are created
// on the global meter, which forwards to whichever provider is installed
// later, so calling this before InitMeter is fine. A nil result (instrument
// creation failed) is safe to record on.
func Lifecycle() *LifecycleMetrics {
	lifecycleOnce.Do(func() {
		m, err := NewLifecycleMetrics(Meter(defaultTracerName))
		if err != nil {
			logger.Warn("lifecycle metrics disabled", logger.Fields("error", err.Error()))
			return
		}
		lifecycleMetrics = m
	})
	return lifecycleMetrics
}
