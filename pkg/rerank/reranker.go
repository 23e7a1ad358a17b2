package rerank

import "context"

// Reranker scores query/document pairs with a cross-encoder style model.
// Scores are signed logits aligned positionally with the input documents:
// higher means more relevant, negative values denote likely irrelevance.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}
