// Package notify publishes the pipeline's outbound events. Events are
// fanned out through the notify queue so delivery integrations (push,
// websocket, email) can consume them without coupling to the stages.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/models"
	"minbar/internal/tasks"
)

// Notifier is what the pipeline stages see.
type Notifier interface {
	NotifyContentDeleted(ctx context.Context, content *models.Content, report *models.ModerationReport) error
	NotifyJobMatch(ctx context.Context, jobPosting *models.Content, candidates []models.MatchResult) error
}

// QueueNotifier publishes notification tasks onto the notify queue.
type QueueNotifier struct {
	client *asynq.Client
}

func NewQueueNotifier(opt asynq.RedisClientOpt) *QueueNotifier {
	return &QueueNotifier{client: asynq.NewClient(opt)}
}

func (n *QueueNotifier) Close() error {
	return n.client.Close()
}

func (n *QueueNotifier) NotifyContentDeleted(ctx context.Context, content *models.Content, report *models.ModerationReport) error {
	notice := tasks.ContentDeletedNotice{
		ContentType: content.ContentType,
		ContentID:   content.ID,
		AuthorID:    content.AuthorID,
		ReportID:    report.ID,
		Reason:      report.Reason,
	}
	return n.publish(ctx, tasks.TypeNotifyContentDeleted, notice)
}

func (n *QueueNotifier) NotifyJobMatch(ctx context.Context, jobPosting *models.Content, candidates []models.MatchResult) error {
	notice := tasks.JobMatchNotice{JobPostingID: jobPosting.ID}
	for _, c := range candidates {
		notice.CandidateProfileIDs = append(notice.CandidateProfileIDs, c.ID)
	}
	return n.publish(ctx, tasks.TypeNotifyJobMatch, notice)
}

func (n *QueueNotifier) publish(ctx context.Context, taskType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s notice: %w", taskType, err)
	}
	_, err = n.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), asynq.Queue(tasks.QueueNotify))
	if err != nil {
		return fmt.Errorf("publish %s: %w", taskType, err)
	}
	return nil
}

var _ Notifier = (*QueueNotifier)(nil)

// LogDeliveryHandlers registers consumers for the notify queue that log each
// event. Delivery integrations replace these handlers.
func LogDeliveryHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeNotifyContentDeleted, func(ctx context.Context, t *asynq.Task) error {
		var notice tasks.ContentDeletedNotice
		if err := json.Unmarshal(t.Payload(), &notice); err != nil {
			return fmt.Errorf("unmarshal content-deleted notice: %w", err)
		}
		log.WithFields(log.Fields{
			"content_id": notice.ContentID,
			"author_id":  notice.AuthorID,
			"reason":     notice.Reason,
		}).Info("Content removed by moderation, author notified")
		return nil
	})
	mux.HandleFunc(tasks.TypeNotifyJobMatch, func(ctx context.Context, t *asynq.Task) error {
		var notice tasks.JobMatchNotice
		if err := json.Unmarshal(t.Payload(), &notice); err != nil {
			return fmt.Errorf("unmarshal job-match notice: %w", err)
		}
		log.WithFields(log.Fields{
			"job_posting_id": notice.JobPostingID,
			"candidates":     len(notice.CandidateProfileIDs),
		}).Info("Job match candidates notified")
		return nil
	})
}
