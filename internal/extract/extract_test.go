package extract

import (
	"context"
	"errors"
	"testing"
)

func TestExtractGarbageReportsCorrupt(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), []byte("this is definitely not a pdf"))
	if err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestExtractEmptyInputReportsCorrupt(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), nil)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestExtractHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PDFExtractor{}.Extract(ctx, []byte("%PDF-1.4"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClassifyParseError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"file is encrypted", ErrEncrypted},
		{"password required", ErrEncrypted},
		{"malformed PDF: missing xref", ErrCorrupt},
		{"not a PDF file", ErrCorrupt},
		{"unexpected EOF", ErrCorrupt},
	}
	for _, tc := range cases {
		got := classifyParseError(errors.New(tc.msg))
		if !errors.Is(got, tc.want) {
			t.Fatalf("classifyParseError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}

	got := classifyParseError(errors.New("disk on fire"))
	if errors.Is(got, ErrEncrypted) || errors.Is(got, ErrCorrupt) {
		t.Fatalf("unrelated error should not be misclassified, got %v", got)
	}
	if !errors.Is(got, ErrExtractionFailed) {
		t.Fatalf("unrelated error should classify as extraction failure, got %v", got)
	}
}

func TestUnavailableExtractor(t *testing.T) {
	_, err := Unavailable{}.Extract(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
