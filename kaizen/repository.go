package kaizen

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = goerrors.New("kaizen not found", goerrors.CategoryNotFound).
	WithCode(404).
	WithTextCode("KAIZEN_NOT_FOUND")

// Repository is the persistent store contract. The store is the only
// durability boundary; Update returns the record as it is after the write.
type Repository interface {
	Create(ctx context.Context, record Kaizen) (Kaizen, error)
	List(ctx context.Context) ([]Kaizen, error)
	GetByID(ctx context.Context, id string) (Kaizen, error)
	Update(ctx context.Context, id string, patch Patch) (Kaizen, error)
}

// NotFound wraps ErrNotFound with the id that missed.
func NotFound(id string) error {
	return goerrors.Wrap(ErrNotFound, goerrors.CategoryNotFound, "kaizen "+id).
		WithMetadata(map[string]any{"id": id})
}

// IsNotFound reports whether err signals a missing record.
func IsNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}
