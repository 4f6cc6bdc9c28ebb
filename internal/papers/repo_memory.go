package papers

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Paper // userId -> papers
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Paper),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, paper Paper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[paper.UserID] = append(r.data[paper.UserID], paper)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, paperID string) (Paper, error) {
	if err := ctx.Err(); err != nil {
		return Paper{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.data[userID] {
		if p.ID == paperID {
			return p, nil
		}
	}
	return Paper{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context, userID string, filter ListFilter) ([]Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := append([]Paper(nil), r.data[userID]...)
	r.mu.RUnlock()

	filtered := all[:0]
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, p := range all {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortPapers(filtered, filter.SortBy, filter.SortOrder)

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []Paper{}, nil
	}
	end := len(filtered)
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}
	return filtered[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, paper Paper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[paper.UserID]
	for i := range list {
		if list[i].ID == paper.ID {
			list[i] = paper
			r.data[paper.UserID] = list
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, paperID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[userID]
	for i := range list {
		if list[i].ID == paperID {
			r.data[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) DeleteAllByUser(ctx context.Context, userID string) ([]Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := r.data[userID]
	delete(r.data, userID)
	return removed, nil
}

// CountByUser returns how many papers a user owns.
func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data[userID]), nil
}

// ClaimGuest reassigns all of a guest's papers to the authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := r.data[guestUserID]
	if len(moved) == 0 {
		return 0, nil
	}
	for i := range moved {
		moved[i].UserID = authedUserID
	}
	r.data[authedUserID] = append(r.data[authedUserID], moved...)
	delete(r.data, guestUserID)
	return len(moved), nil
}

func matchesSearch(p Paper, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Authors), search) ||
		strings.Contains(strings.ToLower(p.Summary), search) {
		return true
	}
	for _, kw := range p.Keywords {
		if strings.Contains(strings.ToLower(kw), search) {
			return true
		}
	}
	return false
}

func sortPapers(papers []Paper, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "asc")
	less := func(i, j int) bool {
		switch sortBy {
		case "title":
			return papers[i].Title < papers[j].Title
		case "category":
			return papers[i].Category < papers[j].Category
		default:
			return papers[i].UploadedAt.Before(papers[j].UploadedAt)
		}
	}
	sort.SliceStable(papers, func(i, j int) bool {
		if asc {
			return less(i, j)
		}
		return less(j, i)
	})
}

var _ Repo = (*MemoryRepo)(nil)
