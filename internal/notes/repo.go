package notes

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("note not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence for notes. Reads and writes are scoped to the
// owning user; the paper linkage is checked at the service layer.
type Repo interface {
	Create(ctx context.Context, note Note) error
	ListByPaper(ctx context.Context, userID, paperID string) ([]Note, error)
	GetByID(ctx context.Context, userID, noteID string) (Note, error)
	Update(ctx context.Context, note Note) error
	Delete(ctx context.Context, userID, noteID string) error
}
