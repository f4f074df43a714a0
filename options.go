package brewmap

import (
	"github.com/rs/zerolog"

	"github.com/brewmap/brewmap/internal/discovery"
	"github.com/brewmap/brewmap/internal/store"
	"github.com/brewmap/brewmap/pkg/logging"
)

// Option is a function that configures a Brewmap instance.
type Option func(*config) error

type config struct {
	store         store.Store
	gateway       discovery.Gateway
	logger        *zerolog.Logger
	bootstrapKML  []byte
	skipBootstrap bool
}

func defaultConfig() *config {
	return &config{
		logger: logging.Default(),
	}
}

// WithStore configures the persistence gateway. Without one, state lives
// only in memory.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithDiscovery configures the AI discovery gateway. Without one, Discover
// and CheckHealth report a configuration error.
func WithDiscovery(g discovery.Gateway) Option {
	return func(c *config) error {
		c.gateway = g
		return nil
	}
}

// WithLogger configures the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithBootstrapKML replaces the embedded bootstrap catalog.
func WithBootstrapKML(data []byte) Option {
	return func(c *config) error {
		c.bootstrapKML = data
		return nil
	}
}

// WithoutBootstrap disables the silent bootstrap import.
func WithoutBootstrap() Option {
	return func(c *config) error {
		c.skipBootstrap = true
		return nil
	}
}
