package service

import (
	"encoding/json"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/cache"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/store"
)

// structuralSummaryProvider serves summaries to the router's disambiguation
// path: cache first, on-demand extraction second, nil when neither works.
type structuralSummaryProvider struct {
	contentCache *cache.ContentCache
	docExtractor extractor.Extractor
	logger       logger.ILogger
}

func NewSummaryProvider(contentCache *cache.ContentCache, docExtractor extractor.Extractor, log logger.ILogger) *structuralSummaryProvider {
	return &structuralSummaryProvider{
		contentCache: contentCache,
		docExtractor: docExtractor,
		logger:       log,
	}
}

func (p *structuralSummaryProvider) SummaryFor(candidate store.Candidate) *extractor.StructuralSummary {
	if raw, hit := p.contentCache.GetByHash(candidate.DocumentID); hit {
		var summary extractor.StructuralSummary
		if err := json.Unmarshal(raw, &summary); err == nil {
			return &summary
		}
		p.logger.Warn("SUMMARY", "Cached summary unreadable, re-extracting", map[string]interface{}{
			"document_id": candidate.DocumentID,
		})
	}

	if candidate.SourcePath == "" {
		return nil
	}

	summary, err := p.docExtractor.Extract(candidate.SourcePath)
	if err != nil {
		p.logger.Warn("SUMMARY", "On-demand extraction failed", map[string]interface{}{
			"document": candidate.DisplayName,
			"error":    err.Error(),
		})
		return nil
	}

	p.contentCache.PutByHash(candidate.DocumentID, summary)
	return summary
}
