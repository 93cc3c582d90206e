package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minbar/internal/config"
	"minbar/internal/models"
	"minbar/internal/tasks"
)

func testThresholds() config.Thresholds {
	return config.Thresholds{
		Toxicity:       0.8,
		SevereToxicity: 0.5,
		Obscene:        0.8,
		Threat:         0.6,
		Insult:         0.8,
		IdentityAttack: 0.6,
		SexualExplicit: 0.8,
	}
}

func cleanScores() *models.ModerationScores {
	return &models.ModerationScores{
		Toxicity:       0.01,
		SevereToxicity: 0.01,
		Obscene:        0.01,
		Threat:         0.01,
		Insult:         0.01,
		IdentityAttack: 0.01,
		SexualExplicit: 0.01,
	}
}

func testContent(contentType models.ContentType) *models.Content {
	return &models.Content{
		ID:          uuid.New(),
		ContentType: contentType,
		AuthorID:    uuid.New(),
		Title:       "Looking for a Go engineer",
		Body:        "We are hiring a backend developer.",
	}
}

func messageFor(content *models.Content) tasks.PipelineMessage {
	return tasks.PipelineMessage{
		ContentID:   content.ID,
		AuthorID:    content.AuthorID,
		ContentType: content.ContentType,
		Title:       content.Title,
		Content:     content.Body,
	}
}

func TestModerationStage_AcceptsCleanContent(t *testing.T) {
	content := testContent(models.ContentTypePost)
	contents := newMockContentStore(content)
	reports := &mockModerationStore{}
	notifier := &mockNotifier{}
	stage := &ModerationStage{
		Detector:   &mockDetector{scores: cleanScores()},
		Contents:   contents,
		Reports:    reports,
		Notifier:   notifier,
		Thresholds: testThresholds(),
	}

	accepted, err := stage.Run(context.Background(), messageFor(content))
	require.NoError(t, err)
	assert.True(t, accepted)

	require.Len(t, reports.reports, 1)
	report := reports.reports[0]
	assert.False(t, report.IsNegative)
	assert.Equal(t, "No issues.", report.Reason)
	assert.True(t, report.IsResolved)
	assert.Equal(t, models.ReporterKindAutomated, report.ReporterKind)

	assert.Empty(t, contents.deleted)
	assert.Equal(t, []uuid.UUID{content.ID}, contents.processed)
	assert.Empty(t, notifier.deletions)
}

func TestModerationStage_RejectsAboveThreshold(t *testing.T) {
	content := testContent(models.ContentTypePost)
	contents := newMockContentStore(content)
	reports := &mockModerationStore{}
	notifier := &mockNotifier{}

	scores := cleanScores()
	scores.Toxicity = 0.9 // threshold is 0.8
	stage := &ModerationStage{
		Detector:   &mockDetector{scores: scores},
		Contents:   contents,
		Reports:    reports,
		Notifier:   notifier,
		Thresholds: testThresholds(),
	}

	accepted, err := stage.Run(context.Background(), messageFor(content))
	require.NoError(t, err)
	assert.False(t, accepted)

	require.Len(t, reports.reports, 1)
	report := reports.reports[0]
	assert.True(t, report.IsNegative)
	assert.Equal(t, "Your post does not follow our Community Guidelines.", report.Reason)
	assert.True(t, report.IsResolved)

	assert.Equal(t, []uuid.UUID{content.ID}, contents.deleted)
	assert.Empty(t, contents.processed)

	require.Len(t, notifier.deletions, 1)
	assert.Equal(t, content.ID, notifier.deletions[0].content.ID)
	assert.Equal(t, report.ID, notifier.deletions[0].report.ID)
}

func TestModerationStage_ScoreAtThresholdRejects(t *testing.T) {
	content := testContent(models.ContentTypePost)
	contents := newMockContentStore(content)
	reports := &mockModerationStore{}

	scores := cleanScores()
	scores.Threat = 0.6 // exactly at the threshold
	stage := &ModerationStage{
		Detector:   &mockDetector{scores: scores},
		Contents:   contents,
		Reports:    reports,
		Notifier:   &mockNotifier{},
		Thresholds: testThresholds(),
	}

	accepted, err := stage.Run(context.Background(), messageFor(content))
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Len(t, contents.deleted, 1)
}

func TestModerationStage_MissingContentIsNoOp(t *testing.T) {
	contents := newMockContentStore()
	reports := &mockModerationStore{}
	stage := &ModerationStage{
		Detector:   &mockDetector{scores: cleanScores()},
		Contents:   contents,
		Reports:    reports,
		Notifier:   &mockNotifier{},
		Thresholds: testThresholds(),
	}

	msg := messageFor(testContent(models.ContentTypePost))
	accepted, err := stage.Run(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Empty(t, reports.reports)
}

func TestModerationStage_DetectorErrorPropagates(t *testing.T) {
	content := testContent(models.ContentTypePost)
	reports := &mockModerationStore{}
	stage := &ModerationStage{
		Detector:   &mockDetector{err: errors.New("model unavailable")},
		Contents:   newMockContentStore(content),
		Reports:    reports,
		Notifier:   &mockNotifier{},
		Thresholds: testThresholds(),
	}

	_, err := stage.Run(context.Background(), messageFor(content))
	require.Error(t, err)
	assert.Empty(t, reports.reports)
}

func TestModerationStage_NotifyFailureIsNotFatal(t *testing.T) {
	content := testContent(models.ContentTypePost)
	contents := newMockContentStore(content)
	notifier := &mockNotifier{deletedErr: errors.New("queue down")}

	scores := cleanScores()
	scores.Insult = 0.95
	stage := &ModerationStage{
		Detector:   &mockDetector{scores: scores},
		Contents:   contents,
		Reports:    &mockModerationStore{},
		Notifier:   notifier,
		Thresholds: testThresholds(),
	}

	accepted, err := stage.Run(context.Background(), messageFor(content))
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Len(t, contents.deleted, 1)
}

func TestModerationStage_DetectorSeesTitleAndBody(t *testing.T) {
	content := testContent(models.ContentTypePost)
	detector := &mockDetector{scores: cleanScores()}
	stage := &ModerationStage{
		Detector:   detector,
		Contents:   newMockContentStore(content),
		Reports:    &mockModerationStore{},
		Notifier:   &mockNotifier{},
		Thresholds: testThresholds(),
	}

	_, err := stage.Run(context.Background(), messageFor(content))
	require.NoError(t, err)
	require.Len(t, detector.texts, 1)
	assert.Equal(t, content.Title+" "+content.Body, detector.texts[0])
}
