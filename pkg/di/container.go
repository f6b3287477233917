package di

import (
	"context"
	"io"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/cache"
	"github.com/goliatone/go-kaizen/config"
	"github.com/goliatone/go-kaizen/internal/httpapi"
	"github.com/goliatone/go-kaizen/internal/media"
	"github.com/goliatone/go-kaizen/internal/metrics"
	"github.com/goliatone/go-kaizen/internal/store"
	"github.com/goliatone/go-kaizen/kaizen"
	"github.com/goliatone/go-kaizen/repositorycache"
)

// Container builds the process-wide singletons once: the record cache, the
// store connection, the media store and the HTTP handler over them.
type Container struct {
	config   config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cache    *cache.RecordCache
	backend  *store.Backend
	repo     *repositorycache.CachedRepository
	uploader media.Uploader
	handler  *httpapi.Handler
}

// Option overrides a component, mostly for tests.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	repository   kaizen.Repository
	mediaBackend media.Backend
}

// WithLogger replaces the logger built from config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRepository skips opening the configured store and uses repo instead.
func WithRepository(repo kaizen.Repository) Option {
	return func(o *options) { o.repository = repo }
}

// WithMediaBackend skips building the configured media backend.
func WithMediaBackend(b media.Backend) Option {
	return func(o *options) { o.mediaBackend = b }
}

// NewLogger returns the JSON slog logger used across the service.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewContainer wires every component from cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	recordCache, err := cache.NewCacheService(cache.Config{
		Capacity:  cfg.Cache.Capacity,
		NumShards: cfg.Cache.Shards,
	})
	if err != nil {
		return nil, err
	}

	c := &Container{
		config:  cfg,
		logger:  o.logger,
		metrics: metrics.New(),
		cache:   recordCache,
	}

	base := o.repository
	if base == nil {
		c.backend, err = store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		base = c.backend.Repository
		c.logger.Info("store connected", slog.String("driver", c.backend.Driver))
	}

	backend := o.mediaBackend
	if backend == nil {
		backend, err = newMediaBackend(ctx, cfg.Media)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
	}
	c.uploader = media.NewService(backend, media.WithFolder(cfg.Media.Folder))

	c.repo = NewCachedRepository(c, metrics.InstrumentRepository(base, c.metrics))
	c.handler = httpapi.New(c.repo, c.uploader,
		httpapi.WithLogger(c.logger),
		httpapi.WithMetrics(c.metrics),
		httpapi.WithMaxUploadBytes(cfg.HTTP.MaxUploadBytes),
	)
	return c, nil
}

// NewCachedRepository decorates base with the container's record cache.
func NewCachedRepository(c *Container, base kaizen.Repository) *repositorycache.CachedRepository {
	return repositorycache.New(base, c.cache,
		repositorycache.WithObserver(c.metrics),
		repositorycache.WithLogger(c.logger),
	)
}

func newMediaBackend(ctx context.Context, cfg config.MediaConfig) (media.Backend, error) {
	switch cfg.Driver {
	case media.DriverFS:
		return media.NewFSBackend(cfg.FSRoot, cfg.PublicBaseURL)
	case media.DriverS3:
		return media.NewS3Backend(ctx, media.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PathStyle:     cfg.S3PathStyle,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	}
	return nil, goerrors.New("unsupported media driver "+cfg.Driver, goerrors.CategoryBadInput)
}

func (c *Container) Config() config.Config                        { return c.config }
func (c *Container) Logger() *slog.Logger                          { return c.logger }
func (c *Container) Metrics() *metrics.Metrics                     { return c.metrics }
func (c *Container) Cache() *cache.RecordCache                     { return c.cache }
func (c *Container) Repository() *repositorycache.CachedRepository { return c.repo }
func (c *Container) Handler() *httpapi.Handler                     { return c.handler }

// Migrate prepares the store schema. It is a no-op for injected repositories.
func (c *Container) Migrate(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Migrate(ctx)
}

// Close releases the store connection.
func (c *Container) Close(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close(ctx)
}
