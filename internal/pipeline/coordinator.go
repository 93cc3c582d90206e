package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/store"
	"minbar/internal/tasks"
)

// Coordinator sequences the pipeline for one content item. It owns no
// business logic: moderation runs first and its verdict gates the rest.
// The moderation hand-off is a direct call, so the coordinator holds the
// message until the verdict exists; only then do the tagging and embedding
// tasks go onto their queues, where they run concurrently and independently.
type Coordinator struct {
	Moderation *ModerationStage
	Jobs       store.JobClient
}

// HandleProcessContent is the asynq handler for pipeline:process.
// Failures are terminal for the message; the periodic sweep re-enqueues
// content that never finished moderation.
func (c *Coordinator) HandleProcessContent(ctx context.Context, t *asynq.Task) error {
	var msg tasks.PipelineMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal pipeline message: %w", err)
	}
	logger := log.WithField("content_id", msg.ContentID)
	logger.Debug("Coordinating content processing")

	accepted, err := c.Moderation.Run(ctx, msg)
	if err != nil {
		logger.WithError(err).Error("Moderation failed, dropping message")
		return err
	}
	if !accepted {
		logger.Debug("Content not accepted, pipeline short-circuits")
		return nil
	}

	if err := c.Jobs.EnqueueTagContent(ctx, msg); err != nil {
		logger.WithError(err).Error("Failed to forward message to tagging stage")
	}
	if err := c.Jobs.EnqueueEmbedContent(ctx, msg); err != nil {
		logger.WithError(err).Error("Failed to forward message to embedding stage")
	}

	logger.Debug("Finished coordinating content processing")
	return nil
}
