package papers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholarscan-backend/internal/extract"
	"scholarscan-backend/internal/llm"
	"scholarscan-backend/internal/shared/metrics"
	"scholarscan-backend/internal/shared/storage/object"
	"scholarscan-backend/internal/shared/telemetry"
)

// ExtractedTextLimit caps how much extracted text is retained alongside the
// original PDF. The full text lives only for the duration of the request.
const ExtractedTextLimit = 50000

const extractedSuffix = ".extracted.txt"

const localProvider = "local"

// Service orchestrates the ingestion pipeline and owns paper CRUD. Primary is
// the preferred object store (S3 in production) and may be nil; Local is the
// filesystem fallback used when the primary is absent or failing.
type Service struct {
	Repo            Repo
	Primary         object.ObjectStore
	PrimaryProvider string
	Local           object.ObjectStore
	Extractor       extract.Extractor
	LLM             llm.Client
}

// IngestResult reports the created record plus whether the AI step was
// skipped or failed and a filename-derived fallback was stored instead.
type IngestResult struct {
	Paper    Paper
	Degraded bool
}

// keySaver is implemented by stores that can write to a caller-chosen key,
// used for the extracted-text sidecar next to the PDF.
type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// Ingest runs the full pipeline for one uploaded PDF: extract text, analyze
// with the AI model, store the original file, persist the record. AI failures
// degrade to a filename-derived record; extraction and storage failures abort.
func (s *Service) Ingest(ctx context.Context, userID, fileName string, data []byte) (IngestResult, error) {
	metrics.IncIngestStarted()
	start := time.Now()

	if len(data) == 0 {
		metrics.IncIngestFailed()
		return IngestResult{}, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}

	res, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		metrics.IncIngestFailed()
		return IngestResult{}, err
	}

	analysis, degraded := s.analyze(ctx, fileName, res)

	provider, storageKey, sizeBytes, err := s.saveFile(ctx, userID, fileName, data)
	if err != nil {
		metrics.IncIngestFailed()
		return IngestResult{}, err
	}

	s.saveExtractedText(ctx, provider, storageKey, res.Text)

	now := time.Now().UTC()
	paper := Paper{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           analysis.Title,
		Authors:         analysis.Authors,
		Summary:         analysis.Summary,
		Keywords:        analysis.Keywords,
		Category:        analysis.Category,
		PublicationYear: analysis.PublicationYear,
		Journal:         analysis.Journal,
		DOI:             analysis.DOI,
		KeyFindings:     analysis.KeyFindings,
		PageCount:       res.PageCount,
		FileName:        fileName,
		StorageProvider: provider,
		StorageKey:      storageKey,
		SizeBytes:       sizeBytes,
		UploadedAt:      now,
		UpdatedAt:       now,
	}

	if err := s.Repo.Create(ctx, paper); err != nil {
		s.deleteObjects(ctx, provider, storageKey)
		metrics.IncIngestFailed()
		return IngestResult{}, fmt.Errorf("create paper: %w", err)
	}

	if degraded {
		metrics.IncIngestDegraded()
	} else {
		metrics.IncIngestCompleted()
	}
	metrics.ObserveIngestDurationMs(float64(time.Since(start).Milliseconds()))

	telemetry.Info("ingest.done", map[string]any{
		"paper_id":  paper.ID,
		"pages":     res.PageCount,
		"provider":  provider,
		"degraded":  degraded,
		"elapsedMs": time.Since(start).Milliseconds(),
	})
	return IngestResult{Paper: paper, Degraded: degraded}, nil
}

// analyze runs the AI step and validates its output. Any model failure,
// including an unconfigured provider, yields the filename fallback.
func (s *Service) analyze(ctx context.Context, fileName string, res extract.Result) (Analysis, bool) {
	prompt := llm.BuildAnalysisPrompt(res.Text, res.PageCount, Categories)
	raw, err := s.LLM.Analyze(ctx, prompt)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			telemetry.Error("ingest.fallback", map[string]any{"error": err.Error()})
		}
		return FallbackAnalysis(fileName), true
	}
	return ParseAnalysis(raw, res.PageCount), false
}

// saveFile writes the PDF to the primary store, falling back to the local
// store when the primary is missing or errors.
func (s *Service) saveFile(ctx context.Context, userID, fileName string, data []byte) (string, string, int64, error) {
	if s.Primary != nil {
		key, size, _, err := s.Primary.Save(ctx, userID, fileName, bytes.NewReader(data))
		if err == nil {
			return s.PrimaryProvider, key, size, nil
		}
		telemetry.Error("storage.fallback", map[string]any{
			"provider": s.PrimaryProvider,
			"error":    err.Error(),
		})
	}
	if s.Local == nil {
		return "", "", 0, fmt.Errorf("%w: no object store configured", ErrStorageUnavailable)
	}
	key, size, _, err := s.Local.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return localProvider, key, size, nil
}

// saveExtractedText stores a bounded prefix of the extracted text next to the
// PDF. Best effort; the record does not depend on the sidecar.
func (s *Service) saveExtractedText(ctx context.Context, provider, storageKey, text string) {
	if text == "" {
		return
	}
	saver, ok := s.storeFor(provider).(keySaver)
	if !ok {
		return
	}
	if len(text) > ExtractedTextLimit {
		text = text[:ExtractedTextLimit]
	}
	key := storageKey + extractedSuffix
	if _, err := saver.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		telemetry.Error("ingest.sidecar_failed", map[string]any{"key": key, "error": err.Error()})
	}
}

// Get returns one paper owned by the user.
func (s *Service) Get(ctx context.Context, userID, paperID string) (Paper, error) {
	return s.Repo.GetByID(ctx, userID, paperID)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// List returns the user's papers after normalizing the filter.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Paper, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Category != "" && !IsCategory(filter.Category) {
		return []Paper{}, nil
	}
	return s.Repo.List(ctx, userID, filter)
}

// UpdateInput carries editable metadata fields. Nil pointers and nil slices
// leave the stored value unchanged.
type UpdateInput struct {
	Title           *string
	Authors         *string
	Summary         *string
	Keywords        []string
	Category        *string
	PublicationYear *int
	Journal         *string
	DOI             *string
	KeyFindings     []Finding
}

// Update applies a partial edit to a paper's metadata.
func (s *Service) Update(ctx context.Context, userID, paperID string, input UpdateInput) (Paper, error) {
	paper, err := s.Repo.GetByID(ctx, userID, paperID)
	if err != nil {
		return Paper{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return Paper{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		paper.Title = title
	}
	if input.Authors != nil {
		paper.Authors = strings.TrimSpace(*input.Authors)
	}
	if input.Summary != nil {
		paper.Summary = *input.Summary
	}
	if input.Keywords != nil {
		paper.Keywords = input.Keywords
	}
	if input.Category != nil {
		if !IsCategory(*input.Category) {
			return Paper{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *input.Category)
		}
		paper.Category = *input.Category
	}
	if input.PublicationYear != nil {
		paper.PublicationYear = input.PublicationYear
	}
	if input.Journal != nil {
		paper.Journal = strings.TrimSpace(*input.Journal)
	}
	if input.DOI != nil {
		paper.DOI = strings.TrimSpace(*input.DOI)
	}
	if input.KeyFindings != nil {
		paper.KeyFindings = input.KeyFindings
	}
	paper.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, paper); err != nil {
		return Paper{}, err
	}
	return paper, nil
}

// Delete removes the record and then, best effort, the stored objects.
func (s *Service) Delete(ctx context.Context, userID, paperID string) error {
	paper, err := s.Repo.GetByID(ctx, userID, paperID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, paperID); err != nil {
		return err
	}
	s.deleteObjects(ctx, paper.StorageProvider, paper.StorageKey)
	return nil
}

// PurgeUser removes all of a user's papers along with their stored files.
// Returns the number of records deleted.
func (s *Service) PurgeUser(ctx context.Context, userID string) (int, error) {
	deleted, err := s.Repo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, paper := range deleted {
		s.deleteObjects(ctx, paper.StorageProvider, paper.StorageKey)
	}
	return len(deleted), nil
}

// PDFHandle is how a caller fetches the original document: a presigned URL
// when the store supports signing, otherwise a readable stream. Exactly one
// of URL and Body is set; the caller closes Body.
type PDFHandle struct {
	Paper Paper
	URL   string
	Body  io.ReadCloser
}

const presignExpiry = 15 * time.Minute

// OpenPDF resolves the original document for download.
func (s *Service) OpenPDF(ctx context.Context, userID, paperID string) (PDFHandle, error) {
	paper, err := s.Repo.GetByID(ctx, userID, paperID)
	if err != nil {
		return PDFHandle{}, err
	}
	store := s.storeFor(paper.StorageProvider)
	if store == nil {
		return PDFHandle{}, fmt.Errorf("%w: store %q not configured", ErrStorageUnavailable, paper.StorageProvider)
	}
	if signer, ok := store.(object.URLSigner); ok {
		url, err := signer.PresignGet(ctx, paper.StorageKey, presignExpiry)
		if err != nil {
			return PDFHandle{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return PDFHandle{Paper: paper, URL: url}, nil
	}
	body, err := store.Open(ctx, paper.StorageKey)
	if err != nil {
		return PDFHandle{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return PDFHandle{Paper: paper, Body: body}, nil
}

func (s *Service) storeFor(provider string) object.ObjectStore {
	if provider != "" && provider == s.PrimaryProvider && s.Primary != nil {
		return s.Primary
	}
	return s.Local
}

// deleteObjects removes the PDF and its sidecar. Failures are logged only;
// orphaned blobs are preferable to surfacing a delete error to the caller.
func (s *Service) deleteObjects(ctx context.Context, provider, storageKey string) {
	if storageKey == "" {
		return
	}
	store := s.storeFor(provider)
	if store == nil {
		return
	}
	if err := store.Delete(ctx, storageKey); err != nil {
		telemetry.Error("storage.delete_failed", map[string]any{"key": storageKey, "error": err.Error()})
	}
	if err := store.Delete(ctx, storageKey+extractedSuffix); err != nil {
		telemetry.Error("storage.delete_failed", map[string]any{"key": storageKey + extractedSuffix, "error": err.Error()})
	}
}
