package publisher

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/techdocs/component"
	"github.com/kbukum/techdocs/logger"
)

// Component wraps a Publisher and implements component.Component for
// lifecycle management.
type Component struct {
	cfg  Config
	deps Deps
	log  *logger.Logger

	mu  sync.RWMutex
	pub Publisher
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a publisher component. The publisher is built on Start.
func NewComponent(cfg Config, deps Deps) *Component {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	deps.Logger = log
	return &Component{cfg: cfg, deps: deps, log: log.WithComponent("publisher")}
}

// Publisher returns the running publisher, or nil if not started.
func (c *Component) Publisher() Publisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pub
}

// Name returns the component name.
func (c *Component) Name() string { return "publisher" }

// Start builds the configured publisher and checks that its backend is ready.
// An unready backend is logged but does not fail Start; Health reports it.
func (c *Component) Start(ctx context.Context) error {
	p, err := FromConfig(ctx, c.cfg, c.deps)
	if err != nil {
		return fmt.Errorf("publisher start: %w", err)
	}

	if r := p.CheckReadiness(ctx); !r.Ready {
		c.log.Warn("publisher backend not ready", logger.Fields(
			logger.FieldBackend, string(r.Backend),
			"reason", r.Reason,
		))
	}

	c.mu.Lock()
	c.pub = p
	c.mu.Unlock()
	return nil
}

// Stop releases the publisher's backend client.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	p := c.pub
	c.pub = nil
	c.mu.Unlock()

	if cl, ok := p.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			return fmt.Errorf("publisher stop: %w", err)
		}
	}
	return nil
}

// Health reports the readiness of the running publisher.
func (c *Component) Health(ctx context.Context) component.Health {
	p := c.Publisher()
	if p == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "publisher not initialized",
		}
	}

	r := p.CheckReadiness(ctx)
	if !r.Ready {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: r.Reason,
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a one-line summary of the configured backend.
func (c *Component) Describe() component.Description {
	details := "type=" + string(c.configuredType())
	if d, ok := c.Publisher().(Describer); ok {
		kv := d.Describe()
		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := []string{details}
		for _, k := range keys {
			parts = append(parts, k+"="+kv[k])
		}
		details = strings.Join(parts, " ")
	}

	return component.Description{
		Name:    "TechDocs Publisher",
		Type:    "publisher",
		Details: details,
	}
}

func (c *Component) configuredType() Type {
	if p := c.Publisher(); p != nil {
		return p.Backend()
	}
	if c.cfg.Publisher.Type == "" {
		return TypeLocal
	}
	return c.cfg.Publisher.Type
}
