package pipeline

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"minbar/internal/config"
	"minbar/internal/models"
	"minbar/internal/notify"
	"minbar/internal/store"
	"minbar/internal/tasks"
)

const moderationPassReason = "No issues."
const moderationRejectReason = "Your post does not follow our Community Guidelines."

// ModerationStage screens content for inappropriate language. A score
// meeting or exceeding any single category threshold rejects the item:
// a negative report is persisted, the content row removed and the author
// notified. Accepted items are marked processed and released downstream.
type ModerationStage struct {
	Detector   ModerationDetector
	Contents   store.ContentStore
	Reports    store.ModerationStore
	Notifier   notify.Notifier
	Thresholds config.Thresholds
}

// Run moderates one message and reports whether the content was accepted.
// A missing content row is a silent no-op (accepted=false so downstream
// stages stay quiet). Detection failures propagate.
func (s *ModerationStage) Run(ctx context.Context, msg tasks.PipelineMessage) (bool, error) {
	logger := log.WithFields(log.Fields{"content_id": msg.ContentID, "content_type": msg.ContentType})
	logger.Info("Running moderation")

	scores, err := s.Detector.Detect(ctx, msg.Title+" "+msg.Content)
	if err != nil {
		return false, fmt.Errorf("moderation detection for content %s: %w", msg.ContentID, err)
	}

	content, err := s.Contents.GetContent(ctx, msg.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("No content found, skipping moderation")
			return false, nil
		}
		return false, fmt.Errorf("load content %s: %w", msg.ContentID, err)
	}

	isAppropriate := true
	reason := moderationPassReason
	if s.violates(scores) {
		isAppropriate = false
		reason = moderationRejectReason
		logger.WithField("scores", fmt.Sprintf("%+v", *scores)).Warn("Content flagged as inappropriate")
	} else {
		logger.Info("Content passed moderation checks")
	}

	report := &models.ModerationReport{
		ContentType: content.ContentType,
		ContentID:   content.ID,
		AuthorID:    content.AuthorID,
		Scores:      *scores,
		IsNegative:  !isAppropriate,
		Reason:      reason,
		// Automated reports need no human resolution.
		IsResolved:   true,
		ReporterKind: models.ReporterKindAutomated,
	}
	if err := s.Reports.CreateReport(ctx, report); err != nil {
		return false, fmt.Errorf("persist moderation report for content %s: %w", msg.ContentID, err)
	}

	if !isAppropriate {
		if err := s.Contents.DeleteContent(ctx, content.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, fmt.Errorf("remove rejected content %s: %w", content.ID, err)
		}
		logger.Info("Content removed due to inappropriate content")

		if err := s.Notifier.NotifyContentDeleted(ctx, content, report); err != nil {
			// The takedown already happened; a lost notification is
			// log-worthy but not fatal.
			logger.WithError(err).Error("Failed to send content-deleted notification")
		}
		return false, nil
	}

	if err := s.Contents.MarkProcessed(ctx, content.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("Content disappeared before being marked processed")
			return false, nil
		}
		return false, fmt.Errorf("mark content %s processed: %w", content.ID, err)
	}
	return true, nil
}

func (s *ModerationStage) violates(scores *models.ModerationScores) bool {
	t := s.Thresholds
	return scores.Toxicity >= t.Toxicity ||
		scores.SevereToxicity >= t.SevereToxicity ||
		scores.Obscene >= t.Obscene ||
		scores.Threat >= t.Threat ||
		scores.Insult >= t.Insult ||
		scores.IdentityAttack >= t.IdentityAttack ||
		scores.SexualExplicit >= t.SexualExplicit
}
