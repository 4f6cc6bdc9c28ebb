package notes

import "time"

// Note is a user annotation attached to one paper, optionally pinned to a page.
type Note struct {
	ID         string
	PaperID    string
	UserID     string
	Content    string
	PageNumber *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
