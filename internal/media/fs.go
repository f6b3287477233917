package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// FSBackend writes objects below a root directory.
type FSBackend struct {
	root    string
	baseURL string
}

// NewFSBackend stores under root. References are baseURL/key, or the file
// path when baseURL is empty.
func NewFSBackend(root, baseURL string) (*FSBackend, error) {
	if root == "" {
		return nil, goerrors.New("media root directory required", goerrors.CategoryBadInput)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "create media root")
	}
	return &FSBackend{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes body to root/key.
func (b *FSBackend) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return "", err
	}
	if b.baseURL == "" {
		return full, nil
	}
	return b.baseURL + "/" + key, nil
}
