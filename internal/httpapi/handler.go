// Package httpapi serves the kaizen HTTP API over a cached repository.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-kaizen/internal/media"
	"github.com/goliatone/go-kaizen/kaizen"
)

// DefaultMaxUploadBytes bounds multipart request bodies.
const DefaultMaxUploadBytes int64 = 10 << 20

// Metrics receives one observation per response and serves the exposition endpoint.
type Metrics interface {
	ObserveHTTP(route string, code int)
	Handler() http.Handler
}

// Handler owns the routes. Every read and write goes through repo, which is
// expected to be the cached repository.
type Handler struct {
	repo      kaizen.Repository
	uploader  media.Uploader
	logger    *slog.Logger
	metrics   Metrics
	now       func() time.Time
	maxUpload int64
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// New creates a Handler. uploader may be nil when uploads are not accepted.
func New(repo kaizen.Repository, uploader media.Uploader, opts ...Option) *Handler {
	h := &Handler{
		repo:      repo,
		uploader:  uploader,
		logger:    slog.Default(),
		now:       time.Now,
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the full middleware-wrapped mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /kaizendetail", h.handleCreate)
	mux.HandleFunc("GET /kaizenfilled", h.handleList)
	mux.HandleFunc("GET /kaizenfilled/{id}", h.handleGet)
	mux.HandleFunc("PUT /kaizenfilled/{id}", h.handleUpdateDetail)
	mux.HandleFunc("PUT /kaizenfilled/status/{id}", h.fieldUpdate(statusField))
	mux.HandleFunc("PUT /kaizenfilled/impact/{id}", h.fieldUpdate(impactField))
	mux.HandleFunc("PUT /kaizenfilled/benefitscore/{id}", h.fieldUpdate(benefitScoreField))
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = h.instrument(handler)
	handler = h.logRequests(handler)
	return cors(handler)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true})
}
