package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholarscan-backend/internal/papers"
)

// MaxContentLength bounds a single note body.
const MaxContentLength = 10000

// PaperGuard verifies the user owns the paper a note attaches to.
type PaperGuard interface {
	Get(ctx context.Context, userID, paperID string) (papers.Paper, error)
}

// ErrPaperNotFound means the target paper does not exist or belongs to
// another user.
var ErrPaperNotFound = errors.New("paper not found")

type Service struct {
	Repo   Repo
	Papers PaperGuard
}

func NewService(repo Repo, guard PaperGuard) *Service {
	return &Service{Repo: repo, Papers: guard}
}

// CreateInput carries the fields for a new note.
type CreateInput struct {
	Content    string
	PageNumber *int
}

func (s *Service) Create(ctx context.Context, userID, paperID string, input CreateInput) (Note, error) {
	if err := s.checkPaper(ctx, userID, paperID); err != nil {
		return Note{}, err
	}
	content, err := validateContent(input.Content)
	if err != nil {
		return Note{}, err
	}
	if err := validatePage(input.PageNumber); err != nil {
		return Note{}, err
	}

	now := time.Now().UTC()
	note := Note{
		ID:         uuid.NewString(),
		PaperID:    paperID,
		UserID:     userID,
		Content:    content,
		PageNumber: input.PageNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, note); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (s *Service) ListByPaper(ctx context.Context, userID, paperID string) ([]Note, error) {
	if err := s.checkPaper(ctx, userID, paperID); err != nil {
		return nil, err
	}
	return s.Repo.ListByPaper(ctx, userID, paperID)
}

// UpdateInput carries a partial note edit. Nil pointers leave values unchanged.
type UpdateInput struct {
	Content    *string
	PageNumber *int
}

func (s *Service) Update(ctx context.Context, userID, noteID string, input UpdateInput) (Note, error) {
	note, err := s.Repo.GetByID(ctx, userID, noteID)
	if err != nil {
		return Note{}, err
	}
	if input.Content != nil {
		content, err := validateContent(*input.Content)
		if err != nil {
			return Note{}, err
		}
		note.Content = content
	}
	if input.PageNumber != nil {
		if err := validatePage(input.PageNumber); err != nil {
			return Note{}, err
		}
		note.PageNumber = input.PageNumber
	}
	note.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, note); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, userID, noteID string) error {
	return s.Repo.Delete(ctx, userID, noteID)
}

func (s *Service) checkPaper(ctx context.Context, userID, paperID string) error {
	if _, err := s.Papers.Get(ctx, userID, paperID); err != nil {
		if errors.Is(err, papers.ErrNotFound) {
			return ErrPaperNotFound
		}
		return err
	}
	return nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if len(content) > MaxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, MaxContentLength)
	}
	return content, nil
}

func validatePage(page *int) error {
	if page != nil && *page < 1 {
		return fmt.Errorf("%w: pageNumber must be positive", ErrInvalidInput)
	}
	return nil
}
