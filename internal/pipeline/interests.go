package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"minbar/internal/store"
	"minbar/internal/tasks"
)

// InterestUpdater recomputes a profile's aggregate interest embedding from
// the text of all its interest tags. The vector is overwritten whole; on
// failure the stored vector is left untouched.
type InterestUpdater struct {
	Embedder EmbeddingGenerator
	Tags     store.TagStore
	Profiles store.ProfileStore
}

// HandleUpdateInterests is the asynq handler for interests:update.
func (u *InterestUpdater) HandleUpdateInterests(ctx context.Context, t *asynq.Task) error {
	var msg tasks.InterestsMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("unmarshal interests message: %w", err)
	}
	return u.Run(ctx, msg.ProfileID)
}

func (u *InterestUpdater) Run(ctx context.Context, profileID uuid.UUID) error {
	logger := log.WithField("profile_id", profileID)
	logger.Info("Updating interest embedding")

	interests, err := u.Tags.GetProfileTags(ctx, profileID)
	if err != nil {
		return fmt.Errorf("load interest tags for profile %s: %w", profileID, err)
	}
	if len(interests) == 0 {
		logger.Warn("Profile has no interest tags, leaving embedding unchanged")
		return nil
	}

	var text strings.Builder
	for _, tag := range interests {
		text.WriteString(tag.EnglishName)
		text.WriteString(" ")
		text.WriteString(tag.ArabicName)
		text.WriteString(" ")
		text.WriteString(tag.Description)
		text.WriteString(" ")
	}

	embedding, err := u.Embedder.GenerateEmbedding(ctx, text.String())
	if err != nil {
		return fmt.Errorf("embed interests for profile %s: %w", profileID, err)
	}

	if err := u.Profiles.SetInterestEmbedding(ctx, profileID, embedding); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("No profile found, skipping interest embedding update")
			return nil
		}
		return fmt.Errorf("persist interest embedding for profile %s: %w", profileID, err)
	}
	logger.Info("Interest embedding updated")
	return nil
}
