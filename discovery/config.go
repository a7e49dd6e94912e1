package discovery

import (
	"fmt"
	"net/url"
)

// Config holds static URL discovery configuration.
type Config struct {
	// BaseURL is the internal backend base URL (e.g. http://localhost:7007).
	BaseURL string `mapstructure:"baseUrl"`

	// ExternalBaseURL is the public base URL; defaults to BaseURL.
	ExternalBaseURL string `mapstructure:"externalBaseUrl"`

	// Endpoints overrides the resolved URL for individual plugins.
	Endpoints map[string]string `mapstructure:"endpoints"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.ExternalBaseURL == "" {
		c.ExternalBaseURL = c.BaseURL
	}
}

// Validate checks that all configured URLs are absolute.
func (c *Config) Validate() error {
	if err := absolute("discovery.baseUrl", c.BaseURL); err != nil {
		return err
	}
	if err := absolute("discovery.externalBaseUrl", c.ExternalBaseURL); err != nil {
		return err
	}
	for plugin, u := range c.Endpoints {
		if err := absolute("discovery.endpoints."+plugin, u); err != nil {
			return err
		}
	}
	return nil
}

func absolute(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL (got: %q)", field, raw)
	}
	return nil
}
