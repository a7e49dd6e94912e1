package publisher

import (
	"context"
	"sync"

	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/discovery/static"
	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/logger"
	"github.com/kbukum/techdocs/observability"
)

// PluginID is the discovery id the techdocs backend is registered under.
const PluginID = "techdocs"

// Deps carries the collaborators handed to backend constructors.
type Deps struct {
	Logger *logger.Logger
	// Discovery resolves the URLs the local backend links to. Nil resolves
	// the techdocs plugin to Config.RequestURL.
	Discovery discovery.URLDiscovery
	Metrics   *observability.PublisherMetrics
}

// BackendFactory builds a Publisher from validated, defaulted configuration.
type BackendFactory func(ctx context.Context, cfg *Config, deps Deps) (Publisher, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[Type]BackendFactory)
)

// RegisterFactory registers the constructor for a publisher type.
// Backend packages call this from init so that importing them makes the
// backend available to FromConfig.
func RegisterFactory(t Type, f BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[t] = f
}

func lookupFactory(t Type) (BackendFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[t]
	return f, ok
}

// FromConfig validates cfg and builds the publisher it selects.
// Configuration problems are reported as CONFIGURATION_ERROR and no
// publisher is returned. The backend package for the selected type must be
// imported (e.g. _ "github.com/kbukum/techdocs/publisher/s3").
func FromConfig(ctx context.Context, cfg Config, deps Deps) (Publisher, error) {
	cfg = cfg.Clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	deps.Logger = deps.Logger.WithComponent("publisher")

	if deps.Discovery == nil {
		d, err := static.NewProvider(discovery.Config{
			BaseURL:   cfg.RequestURL,
			Endpoints: map[string]string{PluginID: cfg.RequestURL},
		})
		if err != nil {
			return nil, apperrors.Configuration("techdocs.requestUrl", err.Error()).WithCause(err)
		}
		deps.Discovery = d
	}

	f, ok := lookupFactory(cfg.Publisher.Type)
	if !ok {
		return nil, apperrors.Configuration("techdocs.publisher.type",
			"backend "+string(cfg.Publisher.Type)+" is not linked into this binary")
	}

	p, err := f(ctx, &cfg, deps)
	if err != nil {
		return nil, err
	}
	deps.Logger.Info("publisher initialized", describeFields(p))
	return p, nil
}

// Describer is implemented by publishers that can summarize their identity.
type Describer interface {
	// Describe returns key/value pairs such as bucket or root directory.
	Describe() map[string]string
}

func describeFields(p Publisher) map[string]interface{} {
	fields := logger.Fields(logger.FieldBackend, string(p.Backend()))
	if d, ok := p.(Describer); ok {
		for k, v := range d.Describe() {
			fields[k] = v
		}
	}
	return fields
}
