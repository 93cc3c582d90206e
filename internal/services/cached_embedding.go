package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"minbar/internal/store"
)

// CachedEmbeddingService is a redis read-through cache in front of another
// embedding service. Identical text always maps to the same key, so
// re-embedding unchanged content is a cache hit. Cache failures degrade to
// the inner service, never to an error.
type CachedEmbeddingService struct {
	inner store.EmbeddingService
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedEmbeddingService(inner store.EmbeddingService, rdb *redis.Client, ttl time.Duration) *CachedEmbeddingService {
	return &CachedEmbeddingService{inner: inner, rdb: rdb, ttl: ttl}
}

func (s *CachedEmbeddingService) Name() string                 { return s.inner.Name() }
func (s *CachedEmbeddingService) ModelName() string            { return s.inner.ModelName() }
func (s *CachedEmbeddingService) Dimension() int               { return s.inner.Dimension() }
func (s *CachedEmbeddingService) Status() store.ProviderStatus { return s.inner.Status() }

func (s *CachedEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	key := s.cacheKey(text)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var values []float32
			if err := json.Unmarshal(cached, &values); err == nil && len(values) == s.inner.Dimension() {
				return pgvector.NewVector(values), nil
			}
			log.WithField("key", key).Warn("Discarding malformed cached embedding")
		} else if err != redis.Nil {
			log.WithError(err).Warn("Embedding cache read failed")
		}
	}

	vec, err := s.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}

	if s.rdb != nil {
		payload, err := json.Marshal(vec.Slice())
		if err == nil {
			if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				log.WithError(err).Warn("Embedding cache write failed")
			}
		}
	}
	return vec, nil
}

func (s *CachedEmbeddingService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.inner.ModelName() + "\x00" + text))
	return fmt.Sprintf("embedding:%s", hex.EncodeToString(sum[:]))
}

var _ store.EmbeddingService = (*CachedEmbeddingService)(nil)
