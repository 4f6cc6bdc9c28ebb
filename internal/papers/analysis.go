package papers

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"scholarscan-backend/internal/llm"
)

const (
	defaultTitle   = "Untitled Paper"
	defaultSummary = "No summary available"

	manualReviewTitle   = "Analysis Error - Manual Review Required"
	manualReviewSummary = "The AI response could not be parsed. Please review this paper manually and fill in its details."

	fallbackSummary = "AI analysis was unavailable when this paper was uploaded. The record was created without enrichment; you can edit it manually or re-run analysis later."
)

// rawAnalysis holds every field as raw JSON so one malformed field never
// poisons the rest of the record.
type rawAnalysis struct {
	Title           json.RawMessage `json:"title"`
	Authors         json.RawMessage `json:"authors"`
	Summary         json.RawMessage `json:"summary"`
	Keywords        json.RawMessage `json:"keywords"`
	Category        json.RawMessage `json:"category"`
	PublicationYear json.RawMessage `json:"publicationYear"`
	Journal         json.RawMessage `json:"journal"`
	DOI             json.RawMessage `json:"doi"`
	KeyFindings     json.RawMessage `json:"keyFindings"`
}

type rawFinding struct {
	Finding     json.RawMessage `json:"finding"`
	Section     json.RawMessage `json:"section"`
	PageNumber  json.RawMessage `json:"pageNumber"`
	Confidence  json.RawMessage `json:"confidence"`
	TextSnippet json.RawMessage `json:"textSnippet"`
}

// ParseAnalysis turns the model's raw text into a usable Analysis. It is
// total: any input, including garbage, yields a well-formed record with the
// category inside the closed set. pageCount bounds finding page estimates;
// pass 0 when unknown.
func ParseAnalysis(raw string, pageCount int) Analysis {
	stripped := stripCodeFences(raw)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(stripped), &parsed); err != nil {
		return manualReviewAnalysis()
	}

	out := Analysis{
		Title:           decodeString(parsed.Title, defaultTitle),
		Authors:         decodeString(parsed.Authors, ""),
		Summary:         decodeString(parsed.Summary, defaultSummary),
		Keywords:        decodeStringSlice(parsed.Keywords),
		Category:        decodeCategory(parsed.Category),
		PublicationYear: decodeYear(parsed.PublicationYear),
		Journal:         decodeString(parsed.Journal, ""),
		DOI:             decodeString(parsed.DOI, ""),
		KeyFindings:     decodeFindings(parsed.KeyFindings, pageCount),
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = defaultTitle
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = defaultSummary
	}
	return out
}

// FallbackAnalysis is the fixed record substituted when the AI step cannot
// produce a usable result at all. The title is derived from the uploaded
// file name.
func FallbackAnalysis(fileName string) Analysis {
	return Analysis{
		Title:       TitleFromFileName(fileName),
		Summary:     fallbackSummary,
		Keywords:    []string{},
		Category:    CategoryOther,
		KeyFindings: []Finding{},
	}
}

// TitleFromFileName strips the extension and replaces underscores with spaces.
func TitleFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	title := strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	if title == "" {
		return defaultTitle
	}
	return title
}

func manualReviewAnalysis() Analysis {
	return Analysis{
		Title:       manualReviewTitle,
		Summary:     manualReviewSummary,
		Keywords:    []string{"error", "manual-review-needed"},
		Category:    CategoryOther,
		KeyFindings: []Finding{},
	}
}

// stripCodeFences removes a leading ``` (with optional language tag) and a
// trailing ``` so fenced model output parses as plain JSON.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeString(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func decodeStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeCategory(raw json.RawMessage) string {
	value := decodeString(raw, CategoryOther)
	if IsCategory(value) {
		return value
	}
	return CategoryOther
}

func decodeYear(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var year int
	if err := json.Unmarshal(raw, &year); err != nil {
		return nil
	}
	return &year
}

func decodeFindings(raw json.RawMessage, pageCount int) []Finding {
	if len(raw) == 0 {
		return []Finding{}
	}
	var items []rawFinding
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Finding{}
	}

	maxPage := pageCount
	if maxPage < 1 {
		maxPage = llm.DefaultPageCeiling
	}

	out := make([]Finding, 0, len(items))
	for _, item := range items {
		claim := strings.TrimSpace(decodeString(item.Finding, ""))
		if claim == "" {
			continue
		}
		out = append(out, Finding{
			Finding:     claim,
			Section:     decodeString(item.Section, ""),
			PageNumber:  clampPage(decodePage(item.PageNumber), maxPage),
			Confidence:  normalizeConfidence(decodeString(item.Confidence, "")),
			TextSnippet: decodeString(item.TextSnippet, ""),
		})
	}
	return out
}

func decodePage(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var page int
	if err := json.Unmarshal(raw, &page); err == nil {
		return page
	}
	// Models occasionally quote the number.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 1
}

func clampPage(page, maxPage int) int {
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

func normalizeConfidence(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
