package config

import (
	"fmt"

	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/observability"
	"github.com/kbukum/techdocs/publisher"
)

// DefaultServiceName names the service when the configuration does not.
const DefaultServiceName = "techdocs"

// AppConfig is the complete configuration of the techdocs binary.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	TechDocs      publisher.Config     `yaml:"techdocs" mapstructure:"techdocs"`
	Discovery     discovery.Config     `yaml:"discovery" mapstructure:"discovery"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in defaults for every section except techdocs, whose
// defaults are applied when the publisher is built.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Discovery.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the service, discovery and observability sections.
// The techdocs section is validated by publisher.FromConfig.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Discovery.BaseURL != "" {
		if err := c.Discovery.Validate(); err != nil {
			return fmt.Errorf("config.discovery: %w", err)
		}
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads the application configuration and applies defaults.
// configFile may be empty to search the standard locations.
func Load(configFile string, opts ...LoaderOption) (*AppConfig, error) {
	if configFile != "" {
		opts = append(opts, WithConfigFile(configFile))
	}
	var cfg AppConfig
	if err := LoadConfig(DefaultServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
