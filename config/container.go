package config

import (
	"fmt"

	"github.com/kbukum/iockit/validation"
)

// ContainerConfig configures the container and its declarative definition
// table.
type ContainerConfig struct {
	// ID names the container in logs and spans. A UUID is generated when empty.
	ID string `yaml:"id" mapstructure:"id" validate:"omitempty,uuid"`
	// AllowOverwrite lets a later registration replace an earlier one with
	// the same name, as long as it has not been instantiated.
	AllowOverwrite bool `yaml:"allow_overwrite" mapstructure:"allow_overwrite"`
	// Preinstantiate builds every definition at startup instead of on first use.
	Preinstantiate bool `yaml:"preinstantiate" mapstructure:"preinstantiate"`
	// PreinstantiateAttempts bounds how often a failed factory is retried
	// during preinstantiation. Zero or one means no retry.
	PreinstantiateAttempts int `yaml:"preinstantiate_attempts" mapstructure:"preinstantiate_attempts" validate:"gte=0,lte=10"`
	// Definitions are registered, in order, before configure hooks run.
	Definitions []DefinitionConfig `yaml:"definitions" mapstructure:"definitions" validate:"dive"`
}

// DefinitionConfig declares one definition whose factory is looked up by key
// in the application's catalog.
type DefinitionConfig struct {
	Name      string   `yaml:"name" mapstructure:"name" validate:"required,defname"`
	Factory   string   `yaml:"factory" mapstructure:"factory" validate:"required"`
	DependsOn []string `yaml:"depends_on" mapstructure:"depends_on" validate:"dive,defname"`
	Roles     []string `yaml:"roles" mapstructure:"roles" validate:"dive,defname"`
	Primary   bool     `yaml:"primary" mapstructure:"primary"`
}

// Names returns the definition names in declaration order.
func (c *ContainerConfig) Names() []string {
	names := make([]string, len(c.Definitions))
	for i, d := range c.Definitions {
		names[i] = d.Name
	}
	return names
}

// Validate checks the definition table: tag rules per entry, unique names,
// no definition depending on itself and no repeated dependency. References
// to names outside the table are left to the container, which may receive
// definitions from code as well.
func (c *ContainerConfig) Validate() error {
	v := validation.New()
	v.Merge("", validation.ValidateStruct(c))
	v.Unique("definitions", c.Names())

	for i, d := range c.Definitions {
		field := fmt.Sprintf("definitions[%d]", i)
		v.Excludes(field+".depends_on", d.DependsOn, d.Name,
			fmt.Sprintf("%q must not depend on itself", d.Name))
		v.Unique(field+".depends_on", d.DependsOn)
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
