package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"minbar/internal/models"
)

// TagProposal is one tag as proposed by the model.
type TagProposal struct {
	EnglishName string `json:"english_name"`
	ArabicName  string `json:"arabic_name"`
	Description string `json:"description"`
}

// TaggingResult is the structured output of a tagging run.
type TaggingResult struct {
	Language models.Language `json:"language"`
	Tags     []TagProposal   `json:"tags"`
}

// TaggingService derives bilingual topical tags and a detected language from
// content text via a chat model.
type TaggingService struct {
	caller  *StructuredCaller
	minTags int
	maxTags int
}

func NewTaggingService(client ChatCompleter, model string, minTags, maxTags int, retry RetryStrategy) *TaggingService {
	if minTags <= 0 {
		minTags = 3
	}
	if maxTags < minTags {
		maxTags = 6
	}
	return &TaggingService{
		caller:  NewStructuredCaller(client, model, retry),
		minTags: minTags,
		maxTags: maxTags,
	}
}

// GenerateTags proposes tags for a content item, honoring already-known tag
// names so the model translates rather than reinvents them.
func (s *TaggingService) GenerateTags(ctx context.Context, title, content string, existingTags []string) (*TaggingResult, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: cannot tag empty content", models.ErrValidation)
	}

	var result TaggingResult
	err := s.caller.CompleteJSON(ctx, taggingSystemPrompt(), taggingUserPrompt(title, content, existingTags), &result)
	if err != nil {
		return nil, fmt.Errorf("tag generation: %w", err)
	}
	if err := s.validate(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TranslateTags turns free-text tag names (e.g. from onboarding) into
// bilingual tag pairs with descriptions.
func (s *TaggingService) TranslateTags(ctx context.Context, rawTags []string) ([]TagProposal, error) {
	if len(rawTags) == 0 {
		return nil, fmt.Errorf("%w: no tags to translate", models.ErrValidation)
	}

	var result struct {
		Tags []TagProposal `json:"tags"`
	}
	err := s.caller.CompleteJSON(ctx, translateSystemPrompt(), translateUserPrompt(rawTags), &result)
	if err != nil {
		return nil, fmt.Errorf("tag translation: %w", err)
	}
	if len(result.Tags) == 0 {
		return nil, fmt.Errorf("%w: tag translation returned no tags", models.ErrRemoteService)
	}
	for i := range result.Tags {
		tag := &result.Tags[i]
		tag.EnglishName = normalizeTagName(tag.EnglishName)
		tag.ArabicName = normalizeTagName(tag.ArabicName)
		if !validTagName(tag.EnglishName) || !validTagName(tag.ArabicName) {
			return nil, fmt.Errorf("%w: invalid translated tag name pair %q/%q",
				models.ErrRemoteService, tag.EnglishName, tag.ArabicName)
		}
	}
	return result.Tags, nil
}

func (s *TaggingService) validate(result *TaggingResult) error {
	switch result.Language {
	case models.LanguageEnglish, models.LanguageArabic, models.LanguageMixed, models.LanguageOther:
	default:
		return fmt.Errorf("%w: unknown detected language %q", models.ErrRemoteService, result.Language)
	}

	if len(result.Tags) < s.minTags || len(result.Tags) > s.maxTags {
		return fmt.Errorf("%w: model returned %d tags, want %d-%d",
			models.ErrRemoteService, len(result.Tags), s.minTags, s.maxTags)
	}

	seen := make(map[string]struct{}, len(result.Tags))
	for i := range result.Tags {
		tag := &result.Tags[i]
		tag.EnglishName = normalizeTagName(tag.EnglishName)
		tag.ArabicName = normalizeTagName(tag.ArabicName)

		if !validTagName(tag.EnglishName) || !validTagName(tag.ArabicName) {
			return fmt.Errorf("%w: invalid tag name pair %q/%q",
				models.ErrRemoteService, tag.EnglishName, tag.ArabicName)
		}
		for _, name := range []string{tag.EnglishName, tag.ArabicName} {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: duplicate tag name %q", models.ErrRemoteService, name)
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}

func normalizeTagName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// validTagName requires lowercase letters separated by single spaces, no
// digits or symbols.
func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == ' ' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func taggingSystemPrompt() string {
	lines := []string{
		"You are an advanced text categorization AI specializing in both English and Egyptian Arabic posts.",
		"Your task is to analyze a given post, detect its language (Arabic, English, Mixed, or Other), and categorize it with relevant tags.",
		"For each tag, you must provide both English and Egyptian Arabic names, along with a description.",
		"If the post already has tags, you must translate them and generate additional unique tags without changing their meaning.",
		"If the post has no tags, generate new tags from scratch.",
		"Provide a structured output with at least three and at most six tags.",
		"Respond with a single JSON object: {\"language\": \"English|Arabic|Mixed|Other\", \"tags\": [{\"english_name\": ..., \"arabic_name\": ..., \"description\": ...}]}.",
		"Do not generate any introductory or concluding text.",
		"Tag names should be in English and Egyptian Arabic regardless of the post's language.",
		"Tags should be in lowercase, and separated by space ' '.",
		"Tags should be relevant to the post problem only.",
		"Tags should be unique and not repetitive.",
		"Tags should not contain numbers, or special characters.",
		"Tags should not contain the language name.",
	}
	return strings.Join(lines, "\n")
}

func taggingUserPrompt(title, content string, existingTags []string) string {
	existing := "[]"
	if len(existingTags) > 0 {
		existing = "[" + strings.Join(existingTags, ", ") + "]"
	}
	lines := []string{
		"Categorize the following post based on its content and language.",
		"1. First, detect whether the post is in English, Arabic, Mixed, or Other.",
		"2. If the post has existing tags, translate them and generate additional unique tags.",
		"3. If the post has no tags, generate new tags from scratch.",
		"4. For each tag, provide both English and Egyptian Arabic names, along with a description.",
		"### Post Title:",
		"```",
		title,
		"```",
		"### Post Content:",
		"```",
		content,
		"```",
		"### Existing Tags:",
		"```",
		existing,
		"```",
		"Return only the raw JSON without any markdown code block formatting.",
	}
	return strings.Join(lines, "\n")
}

func translateSystemPrompt() string {
	lines := []string{
		"You are an advanced tag translation and description generation assistant.",
		"Your primary objective is to translate tags between English and Egyptian Arabic, ensuring cultural and linguistic accuracy.",
		"For each provided tag, generate the English version and the Egyptian Arabic version, both lowercase, plus a concise English description.",
		"If the original tag is already in English, only translate it into Egyptian Arabic, and vice versa.",
		"If the language is ambiguous, infer the most probable translation from context.",
		"Tags must not contain numbers, punctuation, special characters, or the name of any language.",
		"Respond with a single JSON object: {\"tags\": [{\"english_name\": ..., \"arabic_name\": ..., \"description\": ...}]}.",
		"Output only the final JSON structure, no preface, code blocks, or additional text.",
	}
	return strings.Join(lines, "\n")
}

func translateUserPrompt(rawTags []string) string {
	lines := []string{
		"Translate and provide descriptions for the following tags:",
		"[" + strings.Join(rawTags, ", ") + "]",
	}
	return strings.Join(lines, "\n")
}
