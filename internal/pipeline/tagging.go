package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/models"
	"minbar/internal/store"
	"minbar/internal/tasks"
)

// TaggingStage derives bilingual topical tags for accepted content, links
// them to the item and to the author's interest set, and asks for the
// author's interest embedding to be recomputed.
type TaggingStage struct {
	Tagger   TagGenerator
	Contents store.ContentStore
	Tags     store.TagStore
	Jobs     store.JobClient
}

// HandleTagContent is the asynq handler for pipeline:tag.
func (s *TaggingStage) HandleTagContent(ctx context.Context, t *asynq.Task) error {
	var msg tasks.PipelineMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal pipeline message: %w", err)
	}
	return s.Run(ctx, msg)
}

// Run tags one content item. No partial commit: a failed run leaves the
// item untagged for a later pass.
func (s *TaggingStage) Run(ctx context.Context, msg tasks.PipelineMessage) error {
	logger := log.WithField("content_id", msg.ContentID)
	logger.Info("Generating tags")

	content, err := s.Contents.GetContent(ctx, msg.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("No content found, skipping tagging")
			return nil
		}
		return fmt.Errorf("load content %s: %w", msg.ContentID, err)
	}

	existing, err := s.Tags.GetContentTags(ctx, content.ID)
	if err != nil {
		return fmt.Errorf("load existing tags for content %s: %w", content.ID, err)
	}
	existingNames := make([]string, 0, len(existing))
	for _, tag := range existing {
		existingNames = append(existingNames, tag.EnglishName)
	}

	result, err := s.Tagger.GenerateTags(ctx, msg.Title, msg.Content, existingNames)
	if err != nil {
		return fmt.Errorf("generate tags for content %s: %w", content.ID, err)
	}

	proposed := make([]models.Tag, 0, len(result.Tags))
	for _, tag := range result.Tags {
		proposed = append(proposed, models.Tag{
			EnglishName: tag.EnglishName,
			ArabicName:  tag.ArabicName,
			Description: tag.Description,
		})
	}

	// Union of new and already-known tags, deduplicated on either name
	// variant by the store.
	tagsToAdd, err := s.Tags.GetOrCreateTags(ctx, proposed)
	if err != nil {
		return fmt.Errorf("persist tags for content %s: %w", content.ID, err)
	}
	tagIDs := make([]int64, 0, len(tagsToAdd))
	for _, tag := range tagsToAdd {
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := s.Tags.AddTagsToContent(ctx, content.ID, tagIDs); err != nil {
		return fmt.Errorf("link tags to content %s: %w", content.ID, err)
	}
	if err := s.Tags.AddTagsToProfile(ctx, content.AuthorID, tagIDs); err != nil {
		return fmt.Errorf("link tags to profile %s: %w", content.AuthorID, err)
	}

	if err := s.Contents.SetTagged(ctx, content.ID, result.Language); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("Content disappeared before being marked tagged")
			return nil
		}
		return fmt.Errorf("mark content %s tagged: %w", content.ID, err)
	}

	if err := s.Jobs.EnqueueInterestsUpdate(ctx, content.AuthorID); err != nil {
		logger.WithError(err).Error("Failed to request interest embedding update")
	}

	logger.WithFields(log.Fields{"tags": len(tagIDs), "language": result.Language}).
		Info("Content tagged")
	return nil
}

// HandleSeedInterests is the asynq handler for interests:seed. Raw
// onboarding tag names are translated into bilingual tags, linked to the
// profile, and an interest embedding update is requested.
func (s *TaggingStage) HandleSeedInterests(ctx context.Context, t *asynq.Task) error {
	var msg tasks.SeedInterestsMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal seed-interests message: %w", err)
	}
	logger := log.WithField("profile_id", msg.ProfileID)
	logger.Info("Seeding profile interests")

	proposals, err := s.Tagger.TranslateTags(ctx, msg.RawTags)
	if err != nil {
		return fmt.Errorf("translate interest tags for profile %s: %w", msg.ProfileID, err)
	}

	proposed := make([]models.Tag, 0, len(proposals))
	for _, tag := range proposals {
		proposed = append(proposed, models.Tag{
			EnglishName: tag.EnglishName,
			ArabicName:  tag.ArabicName,
			Description: tag.Description,
		})
	}
	tagsToAdd, err := s.Tags.GetOrCreateTags(ctx, proposed)
	if err != nil {
		return fmt.Errorf("persist interest tags for profile %s: %w", msg.ProfileID, err)
	}
	tagIDs := make([]int64, 0, len(tagsToAdd))
	for _, tag := range tagsToAdd {
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.Tags.AddTagsToProfile(ctx, msg.ProfileID, tagIDs); err != nil {
		return fmt.Errorf("link interest tags to profile %s: %w", msg.ProfileID, err)
	}

	if err := s.Jobs.EnqueueInterestsUpdate(ctx, msg.ProfileID); err != nil {
		logger.WithError(err).Error("Failed to request interest embedding update")
	}
	return nil
}
