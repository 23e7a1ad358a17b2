package implementation

import (
	"context"
	"errors"

	"manual-assistant-be/internal/model"
	"manual-assistant-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepositoryImpl struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) contract.LibraryRepository {
	return &LibraryRepositoryImpl{db: db}
}

func (r *LibraryRepositoryImpl) Upsert(ctx context.Context, card *model.LibraryCard) error {
	// Content hash is the natural key: re-ingesting an unchanged file updates
	// the card in place instead of duplicating it.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "family_id", "year", "version_label", "version_number",
			"is_current_version", "source_path", "summary", "metadata", "embedding_value",
		}),
	}).Create(card).Error
}

func (r *LibraryRepositoryImpl) FindByDocumentId(ctx context.Context, documentId string) (*model.LibraryCard, error) {
	var card model.LibraryCard
	err := r.db.WithContext(ctx).Where("document_id = ?", documentId).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *LibraryRepositoryImpl) FindFamily(ctx context.Context, familyId string) ([]*model.LibraryCard, error) {
	var cards []*model.LibraryCard
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyId).
		Order("year DESC, version_number DESC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *LibraryRepositoryImpl) MarkCurrentVersion(ctx context.Context, familyId, documentId string) error {
	// Invariant: within a family exactly one card has is_current_version = true.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LibraryCard{}).
			Where("family_id = ?", familyId).
			Update("is_current_version", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.LibraryCard{}).
			Where("document_id = ?", documentId).
			Update("is_current_version", true).Error
	})
}

// SearchSimilarWithScore returns cards with cosine similarity scores.
// Cosine distance in pgvector is 1 - cosine_similarity.
func (r *LibraryRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, currentOnly bool) ([]*contract.ScoredLibraryCard, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.LibraryCard
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("library_cards").
		Select("library_cards.*, 1 - (embedding_value <=> ?) as similarity", queryVector)

	if currentOnly {
		query = query.Where("is_current_version = ?", true)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredLibraryCard, len(results))
	for i := range results {
		card := results[i].LibraryCard
		scored[i] = &contract.ScoredLibraryCard{
			Card:       &card,
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
