package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MinTextLength is the minimum trimmed length required to treat a PDF as text-bearing.
const MinTextLength = 50

var (
	// ErrEmptyOrImageOnly means the PDF parsed but carried too little text,
	// which usually indicates a scanned or image-only document needing OCR.
	ErrEmptyOrImageOnly = errors.New("pdf contains no extractable text")
	// ErrEncrypted means the PDF is password protected.
	ErrEncrypted = errors.New("pdf is encrypted")
	// ErrCorrupt means the PDF structure could not be parsed.
	ErrCorrupt = errors.New("pdf is corrupt")
	// ErrExtractionFailed covers parser failures that are neither an
	// encrypted nor a structurally corrupt document.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrUnavailable is reported by the null extractor when extraction is not configured.
	ErrUnavailable = errors.New("text extraction unavailable")
)

// Result is the outcome of a successful text extraction.
type Result struct {
	Text      string
	PageCount int
}

// Extractor pulls plain text out of an in-memory PDF payload.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

// PDFExtractor implements Extractor using github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// Extract parses all pages and returns the plain text plus page count.
func (PDFExtractor) Extract(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	text, pages, err := extractPDF(data)
	if err != nil {
		return Result{}, err
	}

	if len(strings.TrimSpace(text)) < MinTextLength {
		return Result{}, ErrEmptyOrImageOnly
	}

	return Result{Text: text, PageCount: pages}, nil
}

func extractPDF(data []byte) (text string, pages int, err error) {
	// The underlying parser panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrCorrupt, rec)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", 0, classifyParseError(err)
	}

	pages = pdfReader.NumPage()
	if pages < 1 {
		return "", 0, fmt.Errorf("%w: no pages", ErrCorrupt)
	}

	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return buf.String(), pages, nil
}

// classifyParseError maps parser errors onto the encrypted/corrupt/failed
// taxonomy, preserving the underlying message for diagnostics.
func classifyParseError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
		return fmt.Errorf("%w: %v", ErrEncrypted, err)
	}
	if strings.Contains(msg, "malformed") || strings.Contains(msg, "not a pdf") || strings.Contains(msg, "invalid") || strings.Contains(msg, "eof") {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
}

// Unavailable is a null-object Extractor for deployments without PDF support.
type Unavailable struct{}

func (Unavailable) Extract(ctx context.Context, data []byte) (Result, error) {
	_ = ctx
	_ = data
	return Result{}, ErrUnavailable
}

var (
	_ Extractor = PDFExtractor{}
	_ Extractor = Unavailable{}
)
