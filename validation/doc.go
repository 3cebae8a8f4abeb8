// Package validation checks configuration and definition input before it
// reaches the container.
//
// Struct tag validation covers the loaded configuration tree:
//
//	type DefinitionConfig struct {
//	    Name    string `mapstructure:"name" validate:"required,defname"`
//	    Factory string `mapstructure:"factory" validate:"required"`
//	}
//	err := validation.ValidateStruct(cfg)
//
// Programmatic validation collects field errors for rules tags cannot
// express, such as uniqueness across a slice:
//
//	v := validation.New()
//	v.Required("name", name).Unique("definitions", names)
//	err := v.Validate()
package validation
