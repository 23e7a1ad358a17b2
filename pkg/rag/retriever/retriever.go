package retriever

import (
	"context"
	"sort"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/store"
)

// ContentSearcher is the slice of the vector search service the retriever
// needs: chunk search scoped to one document.
type ContentSearcher interface {
	SearchContent(ctx context.Context, query, documentID string, topK int) ([]store.Evidence, error)
}

// Retriever assembles the evidence set for a query inside one confirmed
// document. It over-fetches, drops chunks below the relevance floor, and
// returns at most evidenceLimit fragments, best first.
type Retriever struct {
	search        ContentSearcher
	minRelevance  float64
	overFetch     int
	evidenceLimit int
	logger        logger.ILogger
}

func NewRetriever(search ContentSearcher, minRelevance float64, overFetch, evidenceLimit int, log logger.ILogger) *Retriever {
	return &Retriever{
		search:        search,
		minRelevance:  minRelevance,
		overFetch:     overFetch,
		evidenceLimit: evidenceLimit,
		logger:        log,
	}
}

// Retrieve returns the evidence set, most relevant first. An empty list is a
// valid outcome ("the manual says nothing about this"), never an error; search
// failures also degrade to empty and are logged.
func (r *Retriever) Retrieve(ctx context.Context, query, documentID string) []store.Evidence {
	chunks, err := r.search.SearchContent(ctx, query, documentID, r.overFetch)
	if err != nil {
		r.logger.Warn("RETRIEVER", "Content search failed, returning no evidence", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return []store.Evidence{}
	}

	kept := make([]store.Evidence, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.RerankScore < r.minRelevance {
			continue
		}
		kept = append(kept, chunk)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RerankScore > kept[j].RerankScore
	})

	if len(kept) > r.evidenceLimit {
		kept = kept[:r.evidenceLimit]
	}

	r.logger.Debug("RETRIEVER", "Evidence assembled", map[string]interface{}{
		"document_id": documentID,
		"fetched":     len(chunks),
		"kept":        len(kept),
	})
	return kept
}
