package papers

import "time"

// PaperResponse is the outward-facing representation of a paper.
type PaperResponse struct {
	PaperID         string    `json:"paperId"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors"`
	Summary         string    `json:"summary"`
	Keywords        []string  `json:"keywords"`
	Category        string    `json:"category"`
	PublicationYear *int      `json:"publicationYear"`
	Journal         string    `json:"journal,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	KeyFindings     []Finding `json:"keyFindings"`
	PageCount       int       `json:"pageCount"`
	FileName        string    `json:"fileName"`
	SizeBytes       int64     `json:"sizeBytes"`
	UploadedAt      time.Time `json:"uploadedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toResponse(p Paper) PaperResponse {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	findings := p.KeyFindings
	if findings == nil {
		findings = []Finding{}
	}
	return PaperResponse{
		PaperID:         p.ID,
		Title:           p.Title,
		Authors:         p.Authors,
		Summary:         p.Summary,
		Keywords:        keywords,
		Category:        p.Category,
		PublicationYear: p.PublicationYear,
		Journal:         p.Journal,
		DOI:             p.DOI,
		KeyFindings:     findings,
		PageCount:       p.PageCount,
		FileName:        p.FileName,
		SizeBytes:       p.SizeBytes,
		UploadedAt:      p.UploadedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// IngestResponse wraps the created paper plus a flag telling clients the AI
// step did not run and the metadata is filename-derived.
type IngestResponse struct {
	Paper    PaperResponse `json:"paper"`
	Degraded bool          `json:"degraded"`
}
