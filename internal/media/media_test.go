package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
)

type recordingBackend struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (r *recordingBackend) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.key, r.contentType, r.body = key, contentType, body
	return "ref://" + key, nil
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantExt string
		wantErr bool
	}{
		{"png", pngBytes, ".png", false},
		{"jpeg", jpegBytes, ".jpg", false},
		{"gif rejected", gifBytes, "", true},
		{"text rejected", []byte("not an image"), "", true},
		{"empty rejected", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtype, err := Sniff(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, goerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, mtype.Extension())
		})
	}
}

func TestService_Upload(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend, WithNameFunc(func() string { return "fixed" }))

	ref, err := svc.Upload(context.Background(), bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "ref://kaizen_uploads/fixed.png", ref)
	assert.Equal(t, "image/png", backend.contentType)
	assert.Equal(t, pngBytes, backend.body)
}

func TestService_UploadCustomFolder(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend, WithFolder("plant_a"), WithNameFunc(func() string { return "x" }))

	_, err := svc.Upload(context.Background(), bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	assert.Equal(t, "plant_a/x.jpg", backend.key)
}

func TestService_UploadRejectsFormat(t *testing.T) {
	backend := &recordingBackend{}
	svc := NewService(backend)

	_, err := svc.Upload(context.Background(), bytes.NewReader(gifBytes))
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))
	assert.Empty(t, backend.key, "backend must not be called")
}

func TestService_UploadBackendFailure(t *testing.T) {
	svc := NewService(&recordingBackend{err: errors.New("bucket gone")})

	_, err := svc.Upload(context.Background(), bytes.NewReader(pngBytes))
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
	assert.Contains(t, err.Error(), "bucket gone")
}

func TestFSBackend_Put(t *testing.T) {
	root := t.TempDir()

	b, err := NewFSBackend(root, "")
	require.NoError(t, err)

	ref, err := b.Put(context.Background(), "kaizen_uploads/a.png", "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "kaizen_uploads", "a.png"), ref)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestFSBackend_PublicURL(t *testing.T) {
	b, err := NewFSBackend(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ref, err := b.Put(context.Background(), "kaizen_uploads/a.png", "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/kaizen_uploads/a.png", ref)
}

func TestFSBackend_RequiresRoot(t *testing.T) {
	_, err := NewFSBackend("", "")
	require.Error(t, err)
}

func TestFSBackend_CanceledContext(t *testing.T) {
	b, err := NewFSBackend(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Put(ctx, "k.png", "image/png", pngBytes)
	assert.True(t, strings.Contains(err.Error(), "canceled"))
}
