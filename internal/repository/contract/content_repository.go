package contract

import (
	"context"

	"manual-assistant-be/internal/model"
)

type ScoredContentChunk struct {
	Chunk      *model.ContentChunk
	Similarity float64
}

type ContentRepository interface {
	CreateBulk(ctx context.Context, chunks []*model.ContentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId string) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId string) ([]*ScoredContentChunk, error)
}
