package papers

import "context"

// ListFilter narrows and orders a user's paper listing.
type ListFilter struct {
	Search    string
	Category  string
	SortBy    string // uploadedAt | title | category
	SortOrder string // asc | desc
	Limit     int
	Offset    int
}

// Repo defines persistence operations for papers. All reads and writes are
// scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, paper Paper) error
	GetByID(ctx context.Context, userID, paperID string) (Paper, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]Paper, error)
	Update(ctx context.Context, paper Paper) error
	Delete(ctx context.Context, userID, paperID string) error
	DeleteAllByUser(ctx context.Context, userID string) ([]Paper, error)
}
