package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"scholarscan-backend/internal/notes"
	"scholarscan-backend/internal/papers"
)

// Service handles account-level operations that span papers and notes.
type Service struct {
	PaperRepo papers.Repo
	NoteRepo  notes.Repo
	Papers    *papers.Service
}

func NewService(paperRepo papers.Repo, noteRepo notes.Repo, paperSvc *papers.Service) *Service {
	return &Service{PaperRepo: paperRepo, NoteRepo: noteRepo, Papers: paperSvc}
}

// ClaimResult reports how many records moved from the guest identity.
type ClaimResult struct {
	MigratedPapers int `json:"migratedPapers"`
	MigratedNotes  int `json:"migratedNotes"`
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

// ClaimGuest moves all of a guest identity's papers and notes to the
// authenticated user. Postgres-backed repos migrate in one transaction.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if paperPG, ok := s.PaperRepo.(*papers.PGRepo); ok && paperPG != nil && paperPG.DB != nil {
		if notePG, ok := s.NoteRepo.(*notes.PGRepo); ok && notePG != nil && notePG.DB != nil {
			return claimWithTx(ctx, paperPG.DB, guestUserID, authedUserID)
		}
	}

	paperCount, err := claim(ctx, s.PaperRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	noteCount, err := claim(ctx, s.NoteRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedPapers: paperCount, MigratedNotes: noteCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	paperRes, err := tx.ExecContext(ctx, `UPDATE papers SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	paperCount, _ := paperRes.RowsAffected()

	noteRes, err := tx.ExecContext(ctx, `UPDATE notes SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	noteCount, _ := noteRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedPapers: int(paperCount), MigratedNotes: int(noteCount)}, nil
}

func claim(ctx context.Context, repo any, guestUserID, authedUserID string) (int, error) {
	claimer, ok := repo.(guestClaimer)
	if !ok {
		return 0, errors.New("repo does not support claim")
	}
	return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
}

// Summary reports what the identity currently owns.
type Summary struct {
	UserID string `json:"userId"`
	Papers int    `json:"papers"`
	Notes  int    `json:"notes"`
}

type userCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Summarize counts the papers and notes owned by the identity.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	if strings.TrimSpace(userID) == "" {
		return Summary{}, errors.New("userID is required")
	}

	summary := Summary{UserID: userID}
	if counter, ok := s.PaperRepo.(userCounter); ok {
		n, err := counter.CountByUser(ctx, userID)
		if err != nil {
			return Summary{}, err
		}
		summary.Papers = n
	}
	if counter, ok := s.NoteRepo.(userCounter); ok {
		n, err := counter.CountByUser(ctx, userID)
		if err != nil {
			return Summary{}, err
		}
		summary.Notes = n
	}
	return summary, nil
}

// PurgeResult reports what a delete-account removed.
type PurgeResult struct {
	DeletedPapers int `json:"deletedPapers"`
	DeletedNotes  int `json:"deletedNotes"`
}

type notesPurger interface {
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
}

// Purge removes all of a user's papers, their stored files, and their notes.
// Postgres removes notes via the papers cascade; the count is best effort.
func (s *Service) Purge(ctx context.Context, userID string) (PurgeResult, error) {
	if strings.TrimSpace(userID) == "" {
		return PurgeResult{}, errors.New("userID is required")
	}

	noteCount := 0
	if purger, ok := s.NoteRepo.(notesPurger); ok {
		n, err := purger.DeleteAllByUser(ctx, userID)
		if err != nil {
			return PurgeResult{}, err
		}
		noteCount = n
	}

	paperCount, err := s.Papers.PurgeUser(ctx, userID)
	if err != nil {
		return PurgeResult{}, err
	}
	return PurgeResult{DeletedPapers: paperCount, DeletedNotes: noteCount}, nil
}
