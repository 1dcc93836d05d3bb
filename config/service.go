package config

import (
	"fmt"
	"time"

	"github.com/kbukum/svcapp/logger"
	"github.com/kbukum/svcapp/observability"
	"github.com/kbukum/svcapp/validation"
)

const (
	// DefaultHealthCheckPort is the liveness listener port used when none is configured.
	DefaultHealthCheckPort = 8080
	// DefaultStepTimeout bounds each shutdown step and each dispose action.
	DefaultStepTimeout = 15 * time.Second
)

// HealthCheckConfig configures the liveness listener.
type HealthCheckConfig struct {
	Port int `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// ShutdownConfig bounds how long shutdown work may take.
type ShutdownConfig struct {
	// StepTimeout is the grace period for each shutdown step.
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout" validate:"gte=0"`
	// DisposeTimeout is the grace period for each dispose action.
	DisposeTimeout time.Duration `yaml:"dispose_timeout" mapstructure:"dispose_timeout" validate:"gte=0"`
}

// ServiceConfig contains the configuration fields every service needs.
// Projects extend this by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Upstream string `yaml:"upstream" mapstructure:"upstream"`
//	}
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Description string               `yaml:"description" mapstructure:"description"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	HealthCheck HealthCheckConfig    `yaml:"health_check" mapstructure:"health_check"`
	Shutdown    ShutdownConfig       `yaml:"shutdown" mapstructure:"shutdown"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = logger.EnvDevelopment
	}
	if c.Environment == logger.EnvDevelopment {
		c.Debug = true
	}
	if c.HealthCheck.Port == 0 {
		c.HealthCheck.Port = DefaultHealthCheckPort
	}
	if c.Shutdown.StepTimeout == 0 {
		c.Shutdown.StepTimeout = DefaultStepTimeout
	}
	if c.Shutdown.DisposeTimeout == 0 {
		c.Shutdown.DisposeTimeout = DefaultStepTimeout
	}
	c.Logging.ApplyEnvironmentDefaults(c.Environment)
	c.Telemetry.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
