// Package config loads service and container configuration.
//
// Configuration is read from a config.yml found next to the service's cmd
// directory, overlaid with a .env file and the process environment, and
// unmarshalled into a struct embedding ServiceConfig:
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("shopdemo", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Environment variables map onto nested keys by splitting on underscores, so
// CONTAINER_ALLOW_OVERWRITE sets container.allow_overwrite. WithEnvPrefix
// restricts binding to variables carrying a prefix, which is stripped.
package config
