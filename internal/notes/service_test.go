package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"scholarscan-backend/internal/papers"
)

func seedPaper(t *testing.T, repo papers.Repo, userID, paperID string) {
	t.Helper()
	now := time.Now().UTC()
	err := repo.Create(context.Background(), papers.Paper{
		ID:         paperID,
		UserID:     userID,
		Title:      "Seed Paper",
		Category:   papers.CategoryOther,
		FileName:   "seed.pdf",
		StorageKey: "seed-key",
		UploadedAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("seed paper: %v", err)
	}
}

func newNotesService(t *testing.T) (*Service, papers.Repo) {
	t.Helper()
	paperRepo := papers.NewMemoryRepo()
	paperSvc := &papers.Service{Repo: paperRepo}
	return NewService(NewMemoryRepo(), paperSvc), paperRepo
}

func TestCreateAndListNotes(t *testing.T) {
	svc, paperRepo := newNotesService(t)
	seedPaper(t, paperRepo, "user-1", "paper-1")

	page := 3
	note, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{
		Content:    "  interesting methodology  ",
		PageNumber: &page,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if note.Content != "interesting methodology" {
		t.Fatalf("content = %q", note.Content)
	}
	if note.PageNumber == nil || *note.PageNumber != 3 {
		t.Fatalf("pageNumber = %v", note.PageNumber)
	}

	list, err := svc.ListByPaper(context.Background(), "user-1", "paper-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 note, got %d", len(list))
	}
}

func TestCreateNoteRequiresOwnedPaper(t *testing.T) {
	svc, paperRepo := newNotesService(t)
	seedPaper(t, paperRepo, "user-1", "paper-1")

	_, err := svc.Create(context.Background(), "user-2", "paper-1", CreateInput{Content: "not mine"})
	if !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}

	_, err = svc.Create(context.Background(), "user-1", "missing", CreateInput{Content: "no paper"})
	if !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	svc, paperRepo := newNotesService(t)
	seedPaper(t, paperRepo, "user-1", "paper-1")

	if _, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{Content: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank content, got %v", err)
	}

	long := strings.Repeat("x", MaxContentLength+1)
	if _, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{Content: long}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long content, got %v", err)
	}

	zero := 0
	if _, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{Content: "ok", PageNumber: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for page 0, got %v", err)
	}
}

func TestUpdateNotePartial(t *testing.T) {
	svc, paperRepo := newNotesService(t)
	seedPaper(t, paperRepo, "user-1", "paper-1")

	page := 2
	note, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{Content: "draft", PageNumber: &page})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newContent := "final"
	updated, err := svc.Update(context.Background(), "user-1", note.ID, UpdateInput{Content: &newContent})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "final" {
		t.Fatalf("content = %q", updated.Content)
	}
	if updated.PageNumber == nil || *updated.PageNumber != 2 {
		t.Fatalf("pageNumber should be unchanged, got %v", updated.PageNumber)
	}

	if _, err := svc.Update(context.Background(), "user-2", note.ID, UpdateInput{Content: &newContent}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	svc, paperRepo := newNotesService(t)
	seedPaper(t, paperRepo, "user-1", "paper-1")

	note, err := svc.Create(context.Background(), "user-1", "paper-1", CreateInput{Content: "to be removed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", note.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
