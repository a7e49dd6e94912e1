package discovery

import (
	"context"
	"errors"
)

// ErrPluginNotFound is returned when no URL can be resolved for a plugin.
var ErrPluginNotFound = errors.New("plugin not found")

// URLDiscovery resolves plugin base URLs.
type URLDiscovery interface {
	// BaseURL returns the internal base URL of the plugin, used for
	// service-to-service calls.
	BaseURL(ctx context.Context, pluginID string) (string, error)

	// ExternalBaseURL returns the publicly reachable base URL of the plugin.
	ExternalBaseURL(ctx context.Context, pluginID string) (string, error)
}
