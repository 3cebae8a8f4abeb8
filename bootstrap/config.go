package bootstrap

import (
	"github.com/kbukum/iockit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) automatically
// satisfies this interface via promoted methods.
//
// Example:
//
//	type ShopConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Currency string `yaml:"currency" mapstructure:"currency"`
//	}
//
//	app, err := bootstrap.NewApp[*ShopConfig](&cfg, bootstrap.WithCatalog(shop.Catalog()))
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
