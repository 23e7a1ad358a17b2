package contract

import (
	"context"

	"manual-assistant-be/internal/model"
)

// ScoredLibraryCard pairs a card with its raw cosine similarity.
type ScoredLibraryCard struct {
	Card       *model.LibraryCard
	Similarity float64
}

type LibraryRepository interface {
	Upsert(ctx context.Context, card *model.LibraryCard) error
	FindByDocumentId(ctx context.Context, documentId string) (*model.LibraryCard, error)
	FindFamily(ctx context.Context, familyId string) ([]*model.LibraryCard, error)
	// MarkCurrentVersion flags exactly one card per family as current.
	MarkCurrentVersion(ctx context.Context, familyId, documentId string) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, currentOnly bool) ([]*ScoredLibraryCard, error)
}
