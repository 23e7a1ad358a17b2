package search

import (
	"context"
	"fmt"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/internal/repository/contract"
	"manual-assistant-be/pkg/embedding"
	"manual-assistant-be/pkg/rerank"
	"manual-assistant-be/pkg/store"
)

// Service implements the vector search collaborator over the Library and
// Content collections: embed the query, run a pgvector similarity search,
// then attach cross-encoder rerank scores aligned with retrieval order.
type Service struct {
	embedder    embedding.Provider
	reranker    rerank.Reranker
	libraryRepo contract.LibraryRepository
	contentRepo contract.ContentRepository
	logger      logger.ILogger
}

func NewService(
	embedder embedding.Provider,
	reranker rerank.Reranker,
	libraryRepo contract.LibraryRepository,
	contentRepo contract.ContentRepository,
	log logger.ILogger,
) *Service {
	return &Service{
		embedder:    embedder,
		reranker:    reranker,
		libraryRepo: libraryRepo,
		contentRepo: contentRepo,
		logger:      log,
	}
}

// SearchLibrary returns current-version manual candidates for a query,
// in retrieval order, each carrying both the raw similarity and the
// reranker's signed logit.
func (s *Service) SearchLibrary(ctx context.Context, query string, topK int) ([]store.Candidate, error) {
	embeddingRes, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scoredCards, err := s.libraryRepo.SearchSimilarWithScore(ctx, embeddingRes.Values, topK, true)
	if err != nil {
		return nil, fmt.Errorf("library search failed: %w", err)
	}

	s.logger.Debug("SEARCH", "Raw library results", map[string]interface{}{
		"query": truncate(query, 50),
		"count": len(scoredCards),
	})

	if len(scoredCards) == 0 {
		return nil, nil
	}

	texts := make([]string, len(scoredCards))
	for i, sc := range scoredCards {
		texts[i] = sc.Card.Summary
	}

	rerankScores, err := s.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("library rerank failed: %w", err)
	}

	candidates := make([]store.Candidate, len(scoredCards))
	for i, sc := range scoredCards {
		candidates[i] = store.Candidate{
			DocumentID:       sc.Card.DocumentId,
			DisplayName:      sc.Card.DisplayName,
			FamilyID:         sc.Card.FamilyId,
			Year:             sc.Card.Year,
			VersionLabel:     sc.Card.VersionLabel,
			IsCurrentVersion: sc.Card.IsCurrentVersion,
			RelevanceScore:   sc.Similarity,
			RerankScore:      rerankScores[i],
			Summary:          truncate(sc.Card.Summary, 500),
			SourcePath:       sc.Card.SourcePath,
		}
	}
	return candidates, nil
}

// SearchContent returns reranked content chunks scoped to one document.
// No score filtering happens here; the retriever owns the relevance floor.
func (s *Service) SearchContent(ctx context.Context, query, documentID string, topK int) ([]store.Evidence, error) {
	embeddingRes, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scoredChunks, err := s.contentRepo.SearchSimilarWithScore(ctx, embeddingRes.Values, topK, documentID)
	if err != nil {
		return nil, fmt.Errorf("content search failed: %w", err)
	}

	s.logger.Debug("SEARCH", "Raw content results", map[string]interface{}{
		"document_id": documentID,
		"count":       len(scoredChunks),
	})

	if len(scoredChunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(scoredChunks))
	for i, sc := range scoredChunks {
		texts[i] = sc.Chunk.Text
	}

	rerankScores, err := s.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("content rerank failed: %w", err)
	}

	evidence := make([]store.Evidence, len(scoredChunks))
	for i, sc := range scoredChunks {
		evidence[i] = store.Evidence{
			Text:        sc.Chunk.Text,
			Page:        sc.Chunk.Page,
			Section:     sectionPath(sc.Chunk.SectionH1, sc.Chunk.SectionH2),
			ChunkType:   sc.Chunk.ChunkType,
			RerankScore: rerankScores[i],
		}
	}
	return evidence, nil
}

func sectionPath(h1, h2 string) string {
	if h2 == "" {
		return h1
	}
	return h1 + " > " + h2
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
