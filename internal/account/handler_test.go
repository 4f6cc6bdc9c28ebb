package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/notes"
	"scholarscan-backend/internal/papers"
)

func newTestRouter(t *testing.T, paperRepo papers.Repo, noteRepo notes.Repo, paperSvc *papers.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(NewService(paperRepo, noteRepo, paperSvc))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func seedPaper(t *testing.T, repo papers.Repo, userID, paperID string) {
	t.Helper()
	now := time.Now().UTC()
	err := repo.Create(context.Background(), papers.Paper{
		ID:         paperID,
		UserID:     userID,
		Title:      "Seed",
		Category:   papers.CategoryOther,
		FileName:   "seed.pdf",
		StorageKey: "seed-" + paperID,
		UploadedAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("seed paper: %v", err)
	}
}

func TestClaimGuestMigratesPapersAndNotes(t *testing.T) {
	paperRepo := papers.NewMemoryRepo()
	noteRepo := notes.NewMemoryRepo()
	paperSvc := &papers.Service{Repo: paperRepo}
	router := newTestRouter(t, paperRepo, noteRepo, paperSvc)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	seedPaper(t, paperRepo, guestUserID, "paper-1")
	err := noteRepo.Create(context.Background(), notes.Note{
		ID:      "note-1",
		PaperID: "paper-1",
		UserID:  guestUserID,
		Content: "guest note",
	})
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	migrated, err := paperRepo.List(context.Background(), "user-1", papers.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list papers: %v", err)
	}
	if len(migrated) != 1 {
		t.Fatalf("expected 1 migrated paper, got %d", len(migrated))
	}

	migratedNotes, err := noteRepo.ListByPaper(context.Background(), "user-1", "paper-1")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(migratedNotes) != 1 {
		t.Fatalf("expected 1 migrated note, got %d", len(migratedNotes))
	}

	leftover, err := paperRepo.List(context.Background(), guestUserID, papers.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list guest papers: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("guest identity should be empty, got %d papers", len(leftover))
	}
}

func TestAccountSummaryCountsOwnedRecords(t *testing.T) {
	paperRepo := papers.NewMemoryRepo()
	noteRepo := notes.NewMemoryRepo()
	router := newTestRouter(t, paperRepo, noteRepo, &papers.Service{Repo: paperRepo})

	seedPaper(t, paperRepo, "user-1", "paper-1")
	seedPaper(t, paperRepo, "user-1", "paper-2")
	seedPaper(t, paperRepo, "user-2", "paper-3")
	err := noteRepo.Create(context.Background(), notes.Note{
		ID:      "note-1",
		PaperID: "paper-1",
		UserID:  "user-1",
		Content: "mine",
	})
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var summary struct {
		UserID string `json:"userId"`
		Papers int    `json:"papers"`
		Notes  int    `json:"notes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.UserID != "user-1" {
		t.Fatalf("userId = %q", summary.UserID)
	}
	if summary.Papers != 2 || summary.Notes != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestClaimGuestRejectsInvalidGuestID(t *testing.T) {
	paperRepo := papers.NewMemoryRepo()
	noteRepo := notes.NewMemoryRepo()
	router := newTestRouter(t, paperRepo, noteRepo, &papers.Service{Repo: paperRepo})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "not-a-uuid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestDeleteAccountPurgesEverything(t *testing.T) {
	paperRepo := papers.NewMemoryRepo()
	noteRepo := notes.NewMemoryRepo()
	paperSvc := &papers.Service{Repo: paperRepo}
	router := newTestRouter(t, paperRepo, noteRepo, paperSvc)

	seedPaper(t, paperRepo, "user-1", "paper-1")
	seedPaper(t, paperRepo, "user-1", "paper-2")
	seedPaper(t, paperRepo, "user-2", "paper-3")
	err := noteRepo.Create(context.Background(), notes.Note{
		ID:      "note-1",
		PaperID: "paper-1",
		UserID:  "user-1",
		Content: "mine",
	})
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	mine, err := paperRepo.List(context.Background(), "user-1", papers.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list papers: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected papers purged, got %d", len(mine))
	}

	theirs, err := paperRepo.List(context.Background(), "user-2", papers.ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list other papers: %v", err)
	}
	if len(theirs) != 1 {
		t.Fatalf("other user's papers should survive, got %d", len(theirs))
	}

	remaining, err := noteRepo.ListByPaper(context.Background(), "user-1", "paper-1")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected notes purged, got %d", len(remaining))
	}
}
