package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/notify"
	"minbar/internal/store"
	"minbar/internal/tasks"
)

// EmbeddingStage computes and persists a content item's vector. Embeddings
// are recomputed whole from the current text on every run, which keeps the
// stored vector from drifting away from edited content. For job postings the
// stage additionally ranks every profile with an interest vector and fans
// the ranked list out as a job-match notification.
type EmbeddingStage struct {
	Embedder EmbeddingGenerator
	Contents store.ContentStore
	Matcher  ProfileRanker
	Notifier notify.Notifier
}

// HandleEmbedContent is the asynq handler for pipeline:embed.
func (s *EmbeddingStage) HandleEmbedContent(ctx context.Context, t *asynq.Task) error {
	var msg tasks.PipelineMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal pipeline message: %w", err)
	}
	return s.Run(ctx, msg)
}

func (s *EmbeddingStage) Run(ctx context.Context, msg tasks.PipelineMessage) error {
	logger := log.WithField("content_id", msg.ContentID)
	logger.Info("Generating content embedding")

	embedding, err := s.Embedder.GenerateEmbedding(ctx, msg.Title+" "+msg.Content)
	if err != nil {
		return fmt.Errorf("embed content %s: %w", msg.ContentID, err)
	}

	if err := s.Contents.SetEmbedding(ctx, msg.ContentID, embedding); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("No content found, skipping embedding")
			return nil
		}
		return fmt.Errorf("persist embedding for content %s: %w", msg.ContentID, err)
	}
	logger.Debug("Embedding persisted")

	if !msg.IsJobPosting() {
		return nil
	}

	content, err := s.Contents.GetContent(ctx, msg.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("Job posting disappeared before match fan-out")
			return nil
		}
		return fmt.Errorf("load job posting %s: %w", msg.ContentID, err)
	}

	// Full ranked list, no distance cut-off; consumers truncate.
	candidates, err := s.Matcher.RankProfiles(ctx, embedding)
	if err != nil {
		return fmt.Errorf("rank candidates for job posting %s: %w", msg.ContentID, err)
	}
	logger.WithField("candidates", len(candidates)).Debug("Notifying job match candidates")

	if err := s.Notifier.NotifyJobMatch(ctx, content, candidates); err != nil {
		return fmt.Errorf("notify job match for posting %s: %w", msg.ContentID, err)
	}
	return nil
}
