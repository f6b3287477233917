// Package config loads service configuration from an optional YAML file and
// KAIZEN_ prefixed environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-yaml"
	goerrors "github.com/goliatone/go-errors"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "KAIZEN_"

// FileEnv names the variable that points at a YAML config file.
const FileEnv = EnvPrefix + "CONFIG_FILE"

type Config struct {
	LogLevel string      `env:"LOG_LEVEL" yaml:"log_level"`
	HTTP     HTTPConfig  `envPrefix:"HTTP_" yaml:"http"`
	Store    StoreConfig `envPrefix:"STORE_" yaml:"store"`
	Media    MediaConfig `envPrefix:"MEDIA_" yaml:"media"`
	Cache    CacheConfig `envPrefix:"CACHE_" yaml:"cache"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" yaml:"addr"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes"`
}

type StoreConfig struct {
	Driver          string `env:"DRIVER" yaml:"driver"`
	DSN             string `env:"DSN" yaml:"dsn"`
	MongoDatabase   string `env:"MONGO_DATABASE" yaml:"mongo_database"`
	MongoCollection string `env:"MONGO_COLLECTION" yaml:"mongo_collection"`
}

type MediaConfig struct {
	Driver        string `env:"DRIVER" yaml:"driver"`
	Folder        string `env:"FOLDER" yaml:"folder"`
	FSRoot        string `env:"FS_ROOT" yaml:"fs_root"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" yaml:"public_base_url"`
	S3Bucket      string `env:"S3_BUCKET" yaml:"s3_bucket"`
	S3Region      string `env:"S3_REGION" yaml:"s3_region"`
	S3Endpoint    string `env:"S3_ENDPOINT" yaml:"s3_endpoint"`
	S3PathStyle   bool   `env:"S3_PATH_STYLE" yaml:"s3_path_style"`
}

// MinShardCapacity is the smallest Capacity/Shards ratio accepted.
const MinShardCapacity = 256

// CacheConfig sizes the record cache. The cache never expires entries, but
// the underlying store evicts from a shard once it holds Capacity/Shards
// entries, so Capacity must exceed the number of records plus one list
// entry with headroom for uneven shard hashing.
type CacheConfig struct {
	Capacity int `env:"CAPACITY" yaml:"capacity"`
	Shards   int `env:"SHARDS" yaml:"shards"`
}

// Default returns a configuration that runs locally with sqlite and a
// filesystem media store.
func Default() Config {
	return Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Addr:            ":5000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			DSN:             "file:kaizen.db?cache=shared",
			MongoDatabase:   "kaizen",
			MongoCollection: "kaizens",
		},
		Media: MediaConfig{
			Driver:   "fs",
			Folder:   "kaizen_uploads",
			FSRoot:   "uploads",
			S3Region: "us-east-1",
		},
		Cache: CacheConfig{
			Capacity: 1 << 20,
			Shards:   64,
		},
	}
}

// Load builds a Config from defaults, then path (when not empty), then the
// environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse env")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return goerrors.Wrap(err, goerrors.CategoryNotFound, "config file "+path)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "read config file")
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "decode config file "+path)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.Required, validation.By(isLevel)),
		validation.Field(&c.HTTP),
		validation.Field(&c.Store),
		validation.Field(&c.Media),
		validation.Field(&c.Cache),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	return nil
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Addr, validation.Required),
		validation.Field(&h.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&h.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In("sqlite", "postgres", "mongo")),
		validation.Field(&s.DSN, validation.Required),
		validation.Field(&s.MongoDatabase, validation.When(s.Driver == "mongo", validation.Required)),
	)
}

func (m MediaConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Driver, validation.Required, validation.In("fs", "s3")),
		validation.Field(&m.Folder, validation.Required),
		validation.Field(&m.FSRoot, validation.When(m.Driver == "fs", validation.Required)),
		validation.Field(&m.S3Bucket, validation.When(m.Driver == "s3", validation.Required)),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.Shards, validation.Required, validation.Min(1), validation.Max(c.Capacity),
			validation.By(c.shardCapacity)),
	)
}

func (c CacheConfig) shardCapacity(value any) error {
	shards, _ := value.(int)
	if shards > 0 && c.Capacity/shards < MinShardCapacity {
		return fmt.Errorf("must leave at least %d entries per shard", MinShardCapacity)
	}
	return nil
}

// SlogLevel converts LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func isLevel(value any) error {
	s, _ := value.(string)
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return errors.New("must be one of debug, info, warn, error")
	}
	return nil
}
