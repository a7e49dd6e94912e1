package local

import (
	"context"

	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/publisher"
)

func init() {
	publisher.RegisterFactory(publisher.TypeLocal, func(_ context.Context, cfg *publisher.Config, deps publisher.Deps) (publisher.Publisher, error) {
		dir := publisher.DefaultLocalDirectory()
		if cfg.Publisher.Local != nil && cfg.Publisher.Local.PublishDirectory != "" {
			dir = cfg.Publisher.Local.PublishDirectory
		}
		return New(dir, deps.Discovery, publisher.StoreOptions{
			Concurrency: cfg.Publisher.Concurrency,
			Logger:      deps.Logger,
			Metrics:     deps.Metrics,
		})
	})
}

// Publisher publishes bundles into a directory on this host.
type Publisher struct {
	*publisher.StorePublisher
	store *Store
}

var _ publisher.Describer = (*Publisher)(nil)

// New creates a local publisher rooted at dir.
func New(dir string, d discovery.URLDiscovery, opts publisher.StoreOptions) (*Publisher, error) {
	store, err := NewStore(dir, d)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		StorePublisher: publisher.NewStorePublisher(publisher.TypeLocal, store, opts),
		store:          store,
	}, nil
}

// Root returns the absolute directory bundles are published under.
func (p *Publisher) Root() string { return p.store.Root() }

// Describe reports the publish directory.
func (p *Publisher) Describe() map[string]string {
	return map[string]string{"root": p.store.Root()}
}
