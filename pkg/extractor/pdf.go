package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	maxOutlineEntries = 20
	maxKeyHeadings    = 8
	maxExcerptLen     = 700
	pagesForExcerpt   = 3
	pagesForHeadings  = 5
)

// PDFExtractor reads outline, leading text and heading heuristics from a PDF.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(path string) (*StructuralSummary, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	summary := &StructuralSummary{
		PageCount: reader.NumPage(),
	}

	// 1. Table of contents
	summary.Outline = flattenOutline(reader.Outline(), 0, maxOutlineEntries)

	// 2. Leading excerpt + heading scan over the first pages
	var excerpt strings.Builder
	seen := make(map[string]bool)
	for i := 1; i <= reader.NumPage(); i++ {
		if i > pagesForHeadings && excerpt.Len() >= maxExcerptLen {
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if i <= pagesForExcerpt && excerpt.Len() < maxExcerptLen {
			excerpt.WriteString(text)
			excerpt.WriteString("\n")
		}

		if i <= pagesForHeadings {
			for _, line := range strings.Split(text, "\n") {
				l := strings.TrimSpace(line)
				if looksLikeHeading(l) && !seen[l] {
					seen[l] = true
					summary.KeyHeadings = append(summary.KeyHeadings, l)
				}
			}
		}
	}

	if len(summary.KeyHeadings) > maxKeyHeadings {
		summary.KeyHeadings = summary.KeyHeadings[:maxKeyHeadings]
	}

	opening := excerpt.String()
	if len(opening) > maxExcerptLen {
		opening = opening[:maxExcerptLen]
	}
	summary.OpeningExcerpt = strings.TrimSpace(opening)

	if len(summary.Outline) > 0 {
		summary.Title = summary.Outline[0]
	}

	return summary, nil
}

func flattenOutline(node pdf.Outline, depth, limit int) []string {
	var entries []string
	if node.Title != "" {
		indent := strings.Repeat("  ", depth)
		entries = append(entries, indent+node.Title)
	}
	for _, child := range node.Child {
		if len(entries) >= limit {
			break
		}
		remaining := limit - len(entries)
		childEntries := flattenOutline(child, depth+1, remaining)
		entries = append(entries, childEntries...)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// looksLikeHeading matches short all-uppercase lines, the visual convention
// for section headings in the manual corpus.
func looksLikeHeading(line string) bool {
	if len(line) <= 4 || len(line) >= 70 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// PageText is one page's plain text, used by the ingestion pipeline to build
// content chunks with page provenance.
type PageText struct {
	Page int
	Text string
}

// PageTexts returns the plain text of every non-empty page in order.
func (e *PDFExtractor) PageTexts(path string) ([]PageText, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}
	return pages, nil
}
