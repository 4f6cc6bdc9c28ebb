package papers

import (
	"encoding/json"
	"time"
)

// Categories is the closed set of paper categories the analysis may use.
// Anything else coming back from the model is coerced to CategoryOther.
var Categories = []string{
	"Computer Science",
	"Biology",
	"Physics",
	"Chemistry",
	"Mathematics",
	"Medicine",
	"Engineering",
	"Social Sciences",
	"Economics",
	"Psychology",
	CategoryOther,
}

const CategoryOther = "Other"

// IsCategory reports whether value is a member of the closed category set.
func IsCategory(value string) bool {
	for _, c := range Categories {
		if c == value {
			return true
		}
	}
	return false
}

// Finding is one AI-extracted claim with metadata for cross-referencing into
// the source PDF. The snippet is best-effort from an untrusted model and is
// not guaranteed to be locatable in the source text.
type Finding struct {
	Finding     string `json:"finding"`
	Section     string `json:"section,omitempty"`
	PageNumber  int    `json:"pageNumber"`
	Confidence  string `json:"confidence"`
	TextSnippet string `json:"textSnippet,omitempty"`
}

// Analysis is the validated structured output of the AI step.
type Analysis struct {
	Title           string
	Authors         string
	Summary         string
	Keywords        []string
	Category        string
	PublicationYear *int
	Journal         string
	DOI             string
	KeyFindings     []Finding
}

// Paper is the persisted record for one ingested document.
type Paper struct {
	ID              string
	UserID          string
	Title           string
	Authors         string
	Summary         string
	Keywords        []string
	Category        string
	PublicationYear *int
	Journal         string
	DOI             string
	KeyFindings     []Finding
	PageCount       int
	FileName        string
	StorageProvider string
	StorageKey      string
	SizeBytes       int64
	UploadedAt      time.Time
	UpdatedAt       time.Time
}

// analysisBlob is the single JSON column bundling summary and key findings.
type analysisBlob struct {
	Summary     string    `json:"summary"`
	KeyFindings []Finding `json:"keyFindings"`
}

// EncodeAnalysisBlob serializes summary plus findings for storage.
func EncodeAnalysisBlob(summary string, findings []Finding) (string, error) {
	if findings == nil {
		findings = []Finding{}
	}
	data, err := json.Marshal(analysisBlob{Summary: summary, KeyFindings: findings})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeAnalysisBlob restores summary and findings from the stored column.
// Unreadable blobs decompose to empty values rather than failing the read.
func DecodeAnalysisBlob(raw string) (string, []Finding) {
	var blob analysisBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return "", []Finding{}
	}
	if blob.KeyFindings == nil {
		blob.KeyFindings = []Finding{}
	}
	return blob.Summary, blob.KeyFindings
}
