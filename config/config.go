// Package config loads yaml configuration into tagged structs with viper,
// applying `default` tags first and validating the result.
package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/smkit/core/validator"
	"github.com/kochabx/smkit/log"
)

// Loader defines the interface for configuration loaders
type Loader interface {
	// Load loads the configuration into the target
	Load(target any) error

	// Watch starts watching for configuration changes
	// The callback is invoked when configuration changes are detected
	Watch(callback func()) error
}

// Config manages application configuration
type Config struct {
	mu       sync.RWMutex
	viper    *viper.Viper
	validate validator.Validator
	target   any
	loader   Loader
	onChange []func()
}

// New creates a new Config instance with the given options.
// Without WithLoader a FileLoader looks for "smkit.yaml" in the working directory.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Default,
		target:   target,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader(DefaultFilename, []string{"."}, c.viper, c.validate)
	}

	return c
}

// Load reads the configuration using the configured loader
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// View runs fn with the target under the read lock, so a concurrent reload
// cannot be observed half-applied.
func (c *Config) View(fn func(target any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn(c.target)
}

// Watch reloads the target whenever the underlying file changes
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		log.Info().Msg("config reloaded successfully")
		for _, fn := range c.onChange {
			fn()
		}
	})
}

// Viper returns the underlying viper instance
func (c *Config) Viper() *viper.Viper {
	return c.viper
}
