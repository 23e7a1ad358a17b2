package extractor

// StructuralSummary is the cheap structural pre-analysis of a document:
// enough signal to judge relevance without full-text retrieval.
type StructuralSummary struct {
	Title          string   `json:"title"`
	PageCount      int      `json:"page_count"`
	Outline        []string `json:"outline"`         // first ~20 table-of-contents entries
	KeyHeadings    []string `json:"key_headings"`    // up to 8 heuristically detected headings
	OpeningExcerpt string   `json:"opening_excerpt"` // leading text, capped at 700 chars
}

// Extractor produces a structural summary from a source document.
type Extractor interface {
	Extract(path string) (*StructuralSummary, error)
}
