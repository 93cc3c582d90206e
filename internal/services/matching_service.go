package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/store"
)

// MatchingService is the similarity matching engine: a read-only ranking of
// stored vectors by ascending cosine distance. It backs the job match
// fan-out, semantic search, and the suggestion read paths.
type MatchingService struct {
	matches   store.MatchStore
	embedding store.EmbeddingService

	searchThreshold float64
	searchLimit     int
	suggestionLimit int
}

func NewMatchingService(matches store.MatchStore, embedding store.EmbeddingService, searchThreshold float64, searchLimit, suggestionLimit int) *MatchingService {
	if searchLimit <= 0 {
		searchLimit = 25
	}
	if suggestionLimit <= 0 {
		suggestionLimit = 50
	}
	return &MatchingService{
		matches:         matches,
		embedding:       embedding,
		searchThreshold: searchThreshold,
		searchLimit:     searchLimit,
		suggestionLimit: suggestionLimit,
	}
}

// RankProfiles returns every profile with an interest vector ordered by
// ascending cosine distance from query. No threshold is applied; callers
// truncate. Used by the job match fan-out.
func (s *MatchingService) RankProfiles(ctx context.Context, query pgvector.Vector) ([]models.MatchResult, error) {
	results, err := s.matches.MatchProfiles(ctx, query, store.MatchQuery{})
	if err != nil {
		return nil, fmt.Errorf("rank profiles: %w", err)
	}
	return results, nil
}

// SearchContent embeds the query text and returns content of the requested
// type within the configured distance threshold, closest first.
func (s *MatchingService) SearchContent(ctx context.Context, queryText string, contentType models.ContentType) ([]models.MatchResult, error) {
	query, err := s.embedding.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}
	threshold := s.searchThreshold
	results, err := s.matches.MatchContent(ctx, query, contentType, store.MatchQuery{
		MaxDistance: &threshold,
		Limit:       s.searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	return results, nil
}

// SimilarContent returns stored items of the same type closest to the given
// item, excluding the item itself.
func (s *MatchingService) SimilarContent(ctx context.Context, content *models.Content) ([]models.MatchResult, error) {
	if content.Embedding == nil {
		return nil, fmt.Errorf("%w: content %s has no embedding", models.ErrValidation, content.ID)
	}
	results, err := s.matches.MatchContentExcluding(ctx, *content.Embedding, content.ContentType, content.ID, store.MatchQuery{
		Limit: s.suggestionLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("similar content: %w", err)
	}
	return results, nil
}

// SuggestedProfiles ranks profiles for a job posting's embedding, capped at
// the suggestion limit.
func (s *MatchingService) SuggestedProfiles(ctx context.Context, jobPostingID uuid.UUID, embedding pgvector.Vector) ([]models.MatchResult, error) {
	results, err := s.matches.MatchProfiles(ctx, embedding, store.MatchQuery{Limit: s.suggestionLimit})
	if err != nil {
		return nil, fmt.Errorf("suggested profiles for job %s: %w", jobPostingID, err)
	}
	return results, nil
}
