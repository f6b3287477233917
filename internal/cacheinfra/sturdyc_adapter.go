package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

// NeverExpire is the TTL handed to sturdyc. Record cache entries carry no
// expiry; they only leave the cache through an explicit Delete.
const NeverExpire = 100 * 365 * 24 * time.Hour

// Config holds the configuration for the sturdyc entry store.
type Config struct {
	// Capacity is the number of entries the underlying client is sized for.
	// It must be large enough that the store never has to evict: the record
	// cache has no eviction policy and relies on explicit invalidation only.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 64
	NumShards int
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:  1 << 20,
		NumShards: 64,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycStore wraps a sturdyc client as a plain key/value entry store.
type SturdycStore struct {
	client *sturdyc.Client[any]
}

// NewSturdycStore validates cfg and creates a sturdyc client with continuous
// evictions disabled and a TTL long enough to never matter.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// evictionPercentage only applies once a shard is full, which the
	// capacity sizing above is meant to prevent.
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		NeverExpire,
		1,
		sturdyc.WithNoContinuousEvictions(),
	)

	return &SturdycStore{client: client}, nil
}

// Get returns the entry stored under key.
func (s *SturdycStore) Get(key string) (any, bool) {
	return s.client.Get(key)
}

// Set stores value under key, replacing any previous entry.
func (s *SturdycStore) Set(key string, value any) {
	s.client.Set(key, value)
}

// Delete removes a single entry.
func (s *SturdycStore) Delete(key string) {
	s.client.Delete(key)
}

// Keys returns every key currently held.
func (s *SturdycStore) Keys() []string {
	return s.client.ScanKeys()
}

// Len returns the number of entries currently held.
func (s *SturdycStore) Len() int {
	return s.client.Size()
}
