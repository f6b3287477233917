// Package media stores uploaded record images and returns the reference
// that is saved on the record.
package media

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultFolder is the object prefix uploads are stored under.
const DefaultFolder = "kaizen_uploads"

// Drivers accepted by Open.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// ErrUnsupportedFormat is returned for uploads that are not jpeg or png.
var ErrUnsupportedFormat = goerrors.New("image must be jpg, jpeg or png", goerrors.CategoryValidation).
	WithCode(400).
	WithTextCode("UNSUPPORTED_IMAGE_FORMAT")

var allowed = []string{"image/jpeg", "image/png"}

// Backend writes one object and returns its public reference.
type Backend interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Uploader is what request handlers depend on.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (string, error)
}

// Service validates uploads and hands them to a Backend under a fresh name.
type Service struct {
	backend Backend
	folder  string
	newName func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFolder overrides DefaultFolder.
func WithFolder(folder string) ServiceOption {
	return func(s *Service) {
		if folder != "" {
			s.folder = folder
		}
	}
}

// WithNameFunc overrides the uuid object naming.
func WithNameFunc(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newName = fn
		}
	}
}

// NewService wraps backend.
func NewService(backend Backend, opts ...ServiceOption) *Service {
	s := &Service{
		backend: backend,
		folder:  DefaultFolder,
		newName: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload sniffs the content, rejects anything but jpeg and png, and stores it.
func (s *Service) Upload(ctx context.Context, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "read upload")
	}

	mtype, err := Sniff(buf.Bytes())
	if err != nil {
		return "", err
	}

	key := path.Join(s.folder, s.newName()+mtype.Extension())
	ref, err := s.backend.Put(ctx, key, mtype.String(), buf.Bytes())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "store image")
	}
	return ref, nil
}

// Sniff detects the content type of data and accepts only jpeg and png.
func Sniff(data []byte) (*mimetype.MIME, error) {
	mtype := mimetype.Detect(data)
	for _, m := range allowed {
		if mtype.Is(m) {
			return mtype, nil
		}
	}
	return nil, goerrors.Wrap(ErrUnsupportedFormat, goerrors.CategoryValidation, "upload").
		WithMetadata(map[string]any{"detected": mtype.String()})
}
