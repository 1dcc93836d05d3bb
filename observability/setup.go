package observability

import (
	"context"
	"fmt"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config is the telemetry section of the service configuration.
type Config struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval" validate:"gte=0"`
}

// ApplyDefaults fills in the endpoint, sample rate and export interval.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Providers holds the SDK providers installed by Setup.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Setup installs tracer and meter providers when telemetry is enabled.
// With telemetry disabled it returns empty Providers and installs nothing.
func Setup(ctx context.Context, cfg Config, service, version, env string) (*Providers, error) {
	p := &Providers{}
	if !cfg.Enabled {
		return p, nil
	}

	tc := TracerConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRate:     cfg.SampleRate,
	}
	tp, err := InitTracer(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	p.Tracer = tp

	mc := MeterConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		Interval:       cfg.MetricsInterval,
	}
	mp, err := InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	p.Meter = mp

	return p, nil
}

// ShutdownTracer flushes and stops the tracer provider, if any.
func (p *Providers) ShutdownTracer(ctx context.Context) error {
	if p == nil || p.Tracer == nil {
		return nil
	}
	return p.Tracer.Shutdown(ctx)
}

// ShutdownMeter flushes and stops the meter provider, if any.
func (p *Providers) ShutdownMeter(ctx context.Context) error {
	if p == nil || p.Meter == nil {
		return nil
	}
	return p.Meter.Shutdown(ctx)
}
