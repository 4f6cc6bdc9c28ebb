package papers

import "errors"

var (
	// ErrNotFound means the paper does not exist or belongs to another user.
	ErrNotFound = errors.New("paper not found")
	// ErrInvalidInput covers missing files, wrong MIME types and oversized uploads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageUnavailable means no storage backend could accept the file.
	ErrStorageUnavailable = errors.New("no storage backend available")
)
