package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"minbar/internal/models"
)

// ModerationService scores text for inappropriate content across seven
// categories using a chat model with structured JSON output.
type ModerationService struct {
	caller *StructuredCaller
}

func NewModerationService(client ChatCompleter, model string, retry RetryStrategy) *ModerationService {
	return &ModerationService{caller: NewStructuredCaller(client, model, retry)}
}

// Detect returns the per-category probabilities for text, each in [0,1]
// rounded to five decimals. A nil error guarantees all scores are in range.
func (s *ModerationService) Detect(ctx context.Context, text string) (*models.ModerationScores, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: cannot moderate empty text", models.ErrValidation)
	}

	var scores models.ModerationScores
	if err := s.caller.CompleteJSON(ctx, moderationSystemPrompt(), moderationUserPrompt(text), &scores); err != nil {
		return nil, fmt.Errorf("moderation scoring: %w", err)
	}

	for name, v := range map[string]*float64{
		"toxicity":        &scores.Toxicity,
		"severe_toxicity": &scores.SevereToxicity,
		"obscene":         &scores.Obscene,
		"threat":          &scores.Threat,
		"insult":          &scores.Insult,
		"identity_attack": &scores.IdentityAttack,
		"sexual_explicit": &scores.SexualExplicit,
	} {
		if *v < 0 || *v > 1 || math.IsNaN(*v) {
			return nil, fmt.Errorf("%w: moderation score %s out of range: %v", models.ErrRemoteService, name, *v)
		}
		*v = round5(*v)
	}
	return &scores, nil
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

func moderationSystemPrompt() string {
	lines := []string{
		"You are an AI moderation system specializing in the detection of NSFW and toxic language across multiple languages, including English and Egyptian Arabic.",
		"Your task is to analyze the given text and output the likelihood (as a probability between 0 and 1) that it falls into each of the following categories:",
		"toxicity, severe_toxicity, obscene, threat, insult, identity_attack, sexual_explicit.",
		"Base your evaluation on linguistic meaning, intent, and contextual cues, not only on isolated words. Be sensitive to cultural nuances and slang used in Arabic and English code-switching.",
		"Your response must strictly be a valid JSON object with exactly those seven keys, each a numeric value between 0 and 1 inclusive, rounded to five decimal places.",
		"Do not include any explanations, comments, markdown formatting, or additional fields. Output only the JSON object.",
		"If uncertain, make a probabilistic estimation based on linguistic cues rather than abstaining.",
	}
	return strings.Join(lines, "\n")
}

func moderationUserPrompt(text string) string {
	lines := []string{
		"Please analyze the following text and return your classification according to the NSFW detection results.",
		"The text is: ",
		text,
	}
	return strings.Join(lines, "\n")
}
