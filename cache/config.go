package cache

import (
	"github.com/goliatone/go-kaizen/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Capacity  int
	NumShards int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:  c.Capacity,
		NumShards: c.NumShards,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:  cfg.Capacity,
		NumShards: cfg.NumShards,
	}
}
