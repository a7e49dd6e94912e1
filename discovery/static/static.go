package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/techdocs/discovery"
)

// Provider implements discovery.URLDiscovery from static configuration.
// Plugin URLs are <base>/api/<pluginID> unless overridden per plugin.
type Provider struct {
	internal  string
	external  string
	endpoints map[string]string
}

var _ discovery.URLDiscovery = (*Provider)(nil)

// NewProvider creates a Provider from validated configuration.
func NewProvider(cfg discovery.Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoints := make(map[string]string, len(cfg.Endpoints))
	for plugin, u := range cfg.Endpoints {
		endpoints[plugin] = strings.TrimRight(u, "/")
	}
	return &Provider{
		internal:  strings.TrimRight(cfg.BaseURL, "/"),
		external:  strings.TrimRight(cfg.ExternalBaseURL, "/"),
		endpoints: endpoints,
	}, nil
}

// NewFromBaseURL creates a Provider that serves both internal and external
// URLs from a single base.
func NewFromBaseURL(baseURL string) (*Provider, error) {
	return NewProvider(discovery.Config{BaseURL: baseURL})
}

// BaseURL returns the internal URL of a plugin.
func (p *Provider) BaseURL(_ context.Context, pluginID string) (string, error) {
	return p.resolve(p.internal, pluginID)
}

// ExternalBaseURL returns the public URL of a plugin.
func (p *Provider) ExternalBaseURL(_ context.Context, pluginID string) (string, error) {
	return p.resolve(p.external, pluginID)
}

func (p *Provider) resolve(base, pluginID string) (string, error) {
	if pluginID == "" {
		return "", fmt.Errorf("%w: empty plugin id", discovery.ErrPluginNotFound)
	}
	if u, ok := p.endpoints[pluginID]; ok {
		return u, nil
	}
	return base + "/api/" + pluginID, nil
}
