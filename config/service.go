package config

import (
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/validation"
)

var validEnvironments = []string{"development", "staging", "production"}

// ServiceConfig contains the configuration every iockit service needs.
// Projects extend this by embedding it in their own config structs.
//
// Example:
//
//	type ShopConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Currency string `yaml:"currency" mapstructure:"currency"`
//	}
type ServiceConfig struct {
	Name        string          `yaml:"name" mapstructure:"name"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Debug       bool            `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Tracing     TracingConfig   `yaml:"tracing" mapstructure:"tracing"`
	Container   ContainerConfig `yaml:"container" mapstructure:"container"`
}

// TracingConfig controls OpenTelemetry export. Tracing and metrics share the
// same OTLP endpoint.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Metrics    bool    `yaml:"metrics" mapstructure:"metrics"`
	// MetricsInterval is the export interval, e.g. "15s".
	MetricsInterval string `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies the bootstrap Config interface.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate validates the base configuration, the logging block and the
// container definition table. All problems are reported together.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, validEnvironments)

	if c.Environment == "" {
		v.AddError("environment", "is required")
	}
	if err := c.Logging.Validate(); err != nil {
		v.Merge("logging", err)
	}
	v.Merge("tracing", validation.ValidateStruct(c.Tracing))
	v.Merge("container", c.Container.Validate())

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ApplyDefaults fills the exporter defaults used when tracing is enabled.
func (t *TracingConfig) ApplyDefaults() {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4318"
	}
	if t.SampleRate == 0 && t.Enabled {
		t.SampleRate = 1.0
	}
	if t.MetricsInterval == "" {
		t.MetricsInterval = "15s"
	}
}
