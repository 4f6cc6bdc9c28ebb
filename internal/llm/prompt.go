package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"
)

//go:embed prompts/analysis.txt
var analysisTemplate string

// MaxPromptTextChars bounds how much paper text is sent to the model.
const MaxPromptTextChars = 30000

const truncationMarker = "\n\n[TEXT TRUNCATED]"

// DefaultPageCeiling is used for page estimates when the page count is unknown.
const DefaultPageCeiling = 15

// BuildAnalysisPrompt renders the analysis prompt for the given paper text.
// Deterministic for identical inputs.
func BuildAnalysisPrompt(text string, pageCount int, categories []string) string {
	if len(text) > MaxPromptTextChars {
		text = truncateOnRune(text, MaxPromptTextChars) + truncationMarker
	}

	replacer := strings.NewReplacer(
		"{{CATEGORIES}}", strings.Join(categories, ", "),
		"{{PAGE_GUIDANCE}}", pageGuidance(pageCount),
		"{{PAPER_TEXT}}", text,
	)
	return replacer.Replace(analysisTemplate)
}

// truncateOnRune cuts text to at most limit bytes, backing off so a
// multi-byte rune is never split.
func truncateOnRune(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func pageGuidance(pageCount int) string {
	if pageCount >= 1 {
		return fmt.Sprintf(
			"\"pageNumber\" is an estimate between 1 and %d: introduction material is usually on pages 1-2, methods around pages %d-%d, results around pages %d-%d, discussion and conclusions near page %d.",
			pageCount,
			pageAt(pageCount, 0.25), pageAt(pageCount, 0.40),
			pageAt(pageCount, 0.50), pageAt(pageCount, 0.75),
			pageCount,
		)
	}
	return fmt.Sprintf("\"pageNumber\" is an estimate between 1 and %d.", DefaultPageCeiling)
}

func pageAt(pageCount int, fraction float64) int {
	page := int(float64(pageCount)*fraction + 0.5)
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	return page
}
