package implementation

import (
	"context"

	"manual-assistant-be/internal/model"
	"manual-assistant-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentRepositoryImpl struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) contract.ContentRepository {
	return &ContentRepositoryImpl{db: db}
}

func (r *ContentRepositoryImpl) CreateBulk(ctx context.Context, chunks []*model.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 100).Error
}

func (r *ContentRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId string) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&model.ContentChunk{}).Error
}

func (r *ContentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId string) ([]*contract.ScoredContentChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	type result struct {
		model.ContentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("content_chunks").
		Select("content_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("document_id = ?", documentId).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredContentChunk, len(results))
	for i := range results {
		chunk := results[i].ContentChunk
		scored[i] = &contract.ScoredContentChunk{
			Chunk:      &chunk,
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
