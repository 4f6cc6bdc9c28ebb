package notes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/shared/server/middleware"
	"scholarscan-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches note routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/papers/:id/notes", h.create)
	rg.GET("/papers/:id/notes", h.list)
	rg.PUT("/notes/:noteId", h.update)
	rg.DELETE("/notes/:noteId", h.delete)
}

// NoteResponse is the outward-facing representation of a note.
type NoteResponse struct {
	NoteID     string    `json:"noteId"`
	PaperID    string    `json:"paperId"`
	Content    string    `json:"content"`
	PageNumber *int      `json:"pageNumber"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toResponse(note Note) NoteResponse {
	return NoteResponse{
		NoteID:     note.ID,
		PaperID:    note.PaperID,
		Content:    note.Content,
		PageNumber: note.PageNumber,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

type createRequest struct {
	Content    string `json:"content"`
	PageNumber *int   `json:"pageNumber"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	note, err := h.Svc.Create(c.Request.Context(), userID, c.Param("id"), CreateInput{
		Content:    req.Content,
		PageNumber: req.PageNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPaperNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create note", nil)
		}
		return
	}

	respond.Created(c, toResponse(note))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	result, err := h.Svc.ListByPaper(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaperNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notes", nil)
		}
		return
	}

	resp := make([]NoteResponse, 0, len(result))
	for _, note := range result {
		resp = append(resp, toResponse(note))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type updateRequest struct {
	Content    *string `json:"content"`
	PageNumber *int    `json:"pageNumber"`
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	note, err := h.Svc.Update(c.Request.Context(), userID, c.Param("noteId"), UpdateInput{
		Content:    req.Content,
		PageNumber: req.PageNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "note not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update note", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(note))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("noteId")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "note not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete note", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}
