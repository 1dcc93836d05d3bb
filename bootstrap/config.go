package bootstrap

import (
	"github.com/kbukum/svcapp/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig automatically satisfies this
// interface via promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Interval time.Duration `yaml:"interval" mapstructure:"interval"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
