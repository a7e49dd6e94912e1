package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	discovery       discovery.URLDiscovery
	out             io.Writer
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithDiscovery overrides the URL discovery handed to the publisher.
func WithDiscovery(d discovery.URLDiscovery) Option {
	return func(o *appOptions) {
		o.discovery = d
	}
}

// WithOutput sets where the startup summary is written. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.out = w
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
