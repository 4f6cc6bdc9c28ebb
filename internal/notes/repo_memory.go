package notes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	notes map[string]Note
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{notes: make(map[string]Note)}
}

func (r *MemoryRepo) Create(ctx context.Context, note Note) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[note.ID] = note
	return nil
}

func (r *MemoryRepo) ListByPaper(ctx context.Context, userID, paperID string) ([]Note, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Note, 0)
	for _, note := range r.notes {
		if note.UserID == userID && note.PaperID == paperID {
			result = append(result, note)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, noteID string) (Note, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	note, ok := r.notes[noteID]
	if !ok || note.UserID != userID {
		return Note{}, ErrNotFound
	}
	return note, nil
}

func (r *MemoryRepo) Update(ctx context.Context, note Note) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return ErrNotFound
	}
	r.notes[note.ID] = note
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, noteID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[noteID]
	if !ok || note.UserID != userID {
		return ErrNotFound
	}
	delete(r.notes, noteID)
	return nil
}

// CountByUser returns how many notes a user owns.
func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, note := range r.notes {
		if note.UserID == userID {
			count++
		}
	}
	return count, nil
}

// DeleteAllByUser removes every note the user owns.
func (r *MemoryRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, note := range r.notes {
		if note.UserID == userID {
			delete(r.notes, id)
			removed++
		}
	}
	return removed, nil
}

// ClaimGuest reassigns all of a guest's notes to the authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, note := range r.notes {
		if note.UserID == guestUserID {
			note.UserID = authedUserID
			r.notes[id] = note
			moved++
		}
	}
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
