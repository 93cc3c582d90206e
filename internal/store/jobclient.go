package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/tasks"
)

// AsynqJobClient enqueues pipeline tasks onto their stage queues.
// Pipeline tasks carry MaxRetry(0): retry semantics belong to the stages
// themselves and to the periodic sweep, not to the transport.
var _ JobClient = (*AsynqJobClient)(nil)

type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(opt asynq.RedisClientOpt) *AsynqJobClient {
	return &AsynqJobClient{client: asynq.NewClient(opt)}
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("job client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.WithError(err).WithField("task_type", task.Type()).Error("Failed to enqueue task")
		return nil, err
	}
	log.WithFields(log.Fields{"task_type": task.Type(), "task_id": info.ID, "queue": info.Queue}).
		Debug("Enqueued task")
	return info, nil
}

func (jc *AsynqJobClient) EnqueueProcessContent(ctx context.Context, msg tasks.PipelineMessage) error {
	return jc.enqueuePipeline(ctx, tasks.TypeProcessContent, tasks.QueuePipeline, msg)
}

func (jc *AsynqJobClient) EnqueueTagContent(ctx context.Context, msg tasks.PipelineMessage) error {
	return jc.enqueuePipeline(ctx, tasks.TypeTagContent, tasks.QueueTagging, msg)
}

func (jc *AsynqJobClient) EnqueueEmbedContent(ctx context.Context, msg tasks.PipelineMessage) error {
	return jc.enqueuePipeline(ctx, tasks.TypeEmbedContent, tasks.QueueEmbedding, msg)
}

func (jc *AsynqJobClient) enqueuePipeline(ctx context.Context, taskType, queue string, msg tasks.PipelineMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	task := asynq.NewTask(taskType, payload)
	if _, err := jc.Enqueue(ctx, task, asynq.Queue(queue), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue %s for content %s: %w", taskType, msg.ContentID, err)
	}
	return nil
}

func (jc *AsynqJobClient) EnqueueInterestsUpdate(ctx context.Context, profileID uuid.UUID) error {
	payload, err := json.Marshal(tasks.InterestsMessage{ProfileID: profileID})
	if err != nil {
		return fmt.Errorf("marshal interests payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeUpdateInterests, payload)
	if _, err := jc.Enqueue(ctx, task, asynq.Queue(tasks.QueueInterests), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue interests update for profile %s: %w", profileID, err)
	}
	return nil
}

func (jc *AsynqJobClient) EnqueueSeedInterests(ctx context.Context, msg tasks.SeedInterestsMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal seed interests payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeSeedInterests, payload)
	if _, err := jc.Enqueue(ctx, task, asynq.Queue(tasks.QueueInterests), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue interest seeding for profile %s: %w", msg.ProfileID, err)
	}
	return nil
}
