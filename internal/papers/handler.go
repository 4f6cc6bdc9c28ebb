package papers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/extract"
	"scholarscan-backend/internal/shared/server/middleware"
	"scholarscan-backend/internal/shared/server/respond"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches paper routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/papers", h.upload)
	rg.GET("/papers", h.list)
	rg.GET("/papers/:id", h.get)
	rg.PUT("/papers/:id", h.update)
	rg.DELETE("/papers/:id", h.delete)
	rg.GET("/papers/:id/pdf", h.pdf)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "pdf file is required", nil)
		return
	}

	if !isPDFUpload(fileHeader.Header.Get("Content-Type"), fileHeader.Filename) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF uploads are supported", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	result, err := h.Svc.Ingest(c.Request.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrEmptyOrImageOnly):
			respond.Error(c, http.StatusBadRequest, "no_extractable_text", "the PDF contains no extractable text; scanned documents are not supported", nil)
		case errors.Is(err, extract.ErrEncrypted):
			respond.Error(c, http.StatusBadRequest, "encrypted_pdf", "the PDF is password protected", nil)
		case errors.Is(err, extract.ErrCorrupt):
			respond.Error(c, http.StatusBadRequest, "corrupt_pdf", "the PDF could not be parsed", nil)
		case errors.Is(err, extract.ErrExtractionFailed):
			respond.Error(c, http.StatusBadRequest, "extraction_failed", "text could not be extracted from the PDF", nil)
		case errors.Is(err, extract.ErrUnavailable):
			respond.Error(c, http.StatusNotImplemented, "not_configured", "text extraction is not configured", nil)
		case errors.Is(err, ErrStorageUnavailable):
			respond.Error(c, http.StatusNotImplemented, "not_configured", "file storage is not configured", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest paper", nil)
		}
		return
	}

	respond.Created(c, IngestResponse{Paper: toResponse(result.Paper), Degraded: result.Degraded})
}

// isPDFUpload accepts a declared PDF content type, or a .pdf filename when
// the client did not set a type on the part.
func isPDFUpload(contentType, fileName string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	switch ct {
	case "application/pdf", "application/x-pdf":
		return true
	case "", "application/octet-stream":
		return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
	}
	return false
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Category:  strings.TrimSpace(c.Query("category")),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}

	results, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list papers", nil)
		return
	}

	resp := make([]PaperResponse, 0, len(results))
	for _, p := range results {
		resp = append(resp, toResponse(p))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	paper, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch paper", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(paper))
}

type updateRequest struct {
	Title           *string   `json:"title"`
	Authors         *string   `json:"authors"`
	Summary         *string   `json:"summary"`
	Keywords        []string  `json:"keywords"`
	Category        *string   `json:"category"`
	PublicationYear *int      `json:"publicationYear"`
	Journal         *string   `json:"journal"`
	DOI             *string   `json:"doi"`
	KeyFindings     []Finding `json:"keyFindings"`
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	paper, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), UpdateInput{
		Title:           req.Title,
		Authors:         req.Authors,
		Summary:         req.Summary,
		Keywords:        req.Keywords,
		Category:        req.Category,
		PublicationYear: req.PublicationYear,
		Journal:         req.Journal,
		DOI:             req.DOI,
		KeyFindings:     req.KeyFindings,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update paper", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(paper))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete paper", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) pdf(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	handle, err := h.Svc.OpenPDF(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "paper not found", nil)
		case errors.Is(err, ErrStorageUnavailable):
			respond.Error(c, http.StatusNotImplemented, "not_configured", "file storage is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch pdf", nil)
		}
		return
	}

	if handle.URL != "" {
		respond.JSON(c, http.StatusOK, gin.H{"url": handle.URL})
		return
	}

	defer handle.Body.Close()
	c.Header("Content-Disposition", `inline; filename="`+handle.Paper.FileName+`"`)
	c.DataFromReader(http.StatusOK, handle.Paper.SizeBytes, "application/pdf", handle.Body, nil)
}
