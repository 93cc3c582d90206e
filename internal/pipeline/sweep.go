package pipeline

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/store"
	"minbar/internal/tasks"
)

const sweepBatchSize = 200

// Sweeper re-enqueues content that was created but never made it through
// moderation, which happens when a process task is lost before the handler
// could run. It is triggered on a schedule, never on demand.
type Sweeper struct {
	Contents store.ContentStore
	Jobs     store.JobClient
}

func (s *Sweeper) HandleSweep(ctx context.Context, t *asynq.Task) error {
	stale, err := s.Contents.ListUnprocessed(ctx, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list unprocessed content: %w", err)
	}
	if len(stale) == 0 {
		log.Debug("Sweep found no unprocessed content")
		return nil
	}

	log.WithField("count", len(stale)).Info("Re-enqueueing unprocessed content")
	var failed int
	for _, content := range stale {
		msg := tasks.PipelineMessage{
			ContentID:   content.ID,
			AuthorID:    content.AuthorID,
			ContentType: content.ContentType,
			Title:       content.Title,
			Content:     content.Body,
		}
		if err := s.Jobs.EnqueueProcessContent(ctx, msg); err != nil {
			failed++
			log.WithError(err).WithField("content_id", content.ID).Error("Failed to re-enqueue content")
		}
	}
	if failed > 0 {
		return fmt.Errorf("re-enqueue failed for %d of %d items", failed, len(stale))
	}
	return nil
}
