// Package ai produces release summaries with the Anthropic API.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/redgit/redgit/internal/changelog"
	"github.com/redgit/redgit/internal/logger"
)

// Release summaries are prose generation over a few hundred commit lines,
// not deep reasoning, so the cost-efficient model is the default.
const (
	// ModelDefault is the model used unless overridden in config or env.
	ModelDefault = "claude-3-5-haiku-20241022"

	// ModelLarge is available via config for teams that want richer
	// summaries.
	ModelLarge = "claude-sonnet-4-5-20250929"
)

const defaultMaxTokens = 2048

// languageNames maps config language codes to the names used in prompts.
// Unknown codes pass through as-is.
var languageNames = map[string]string{
	"en": "English",
	"tr": "Turkish",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
}

// GetModel returns the model to use, checking REDGIT_MODEL first, then the
// configured model, then the default.
func GetModel(configured string) string {
	if model := os.Getenv("REDGIT_MODEL"); model != "" {
		return model
	}
	if configured != "" {
		return configured
	}
	return ModelDefault
}

// Summarizer generates release summaries for changelog documents.
type Summarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// Config holds summarizer configuration.
type Config struct {
	APIKey    string // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model     string // Model to use (default resolved by GetModel)
	MaxTokens int    // Response token cap (default 2048)
}

// NewSummarizer creates a Summarizer. It fails when no API key is
// available, so callers can degrade to summary-less changelogs up front.
func NewSummarizer(cfg Config) (*Summarizer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Summarizer{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     GetModel(cfg.Model),
		maxTokens: maxTokens,
	}, nil
}

// SummarizeRelease generates a markdown release summary for the request.
func (s *Summarizer) SummarizeRelease(ctx context.Context, req changelog.SummaryRequest) (string, error) {
	if len(req.Commits) == 0 {
		return "", nil
	}

	prompt := buildReleasePrompt(req)

	startTime := time.Now()
	var response *anthropic.Message
	err := retryWithBackoff(ctx, func(attemptCtx context.Context) error {
		resp, apiErr := s.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(s.model),
			MaxTokens: s.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var summary strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			summary.WriteString(block.Text)
		}
	}

	logger.Debug("AI summary generated",
		"model", s.model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"duration", time.Since(startTime))

	return strings.TrimSpace(summary.String()), nil
}

// buildReleasePrompt builds the summarization prompt from the request.
func buildReleasePrompt(req changelog.SummaryRequest) string {
	previous := req.PreviousRef
	if previous == "" {
		previous = "Initial Release"
	}

	languageName := languageNames[req.Language]
	if languageName == "" {
		languageName = req.Language
	}
	if languageName == "" {
		languageName = "English"
	}

	var typeSummary strings.Builder
	for _, typ := range changelog.TypeOrder {
		count := req.TypeCounts[typ]
		if count == 0 {
			continue
		}
		fmt.Fprintf(&typeSummary, "- %s: %d\n", changelog.TypeDisplay[typ].Name, count)
	}

	var commitLines strings.Builder
	for _, c := range req.Commits {
		fmt.Fprintf(&commitLines, "- %s (by %s, %s)\n",
			c.Subject, c.Author, c.Timestamp.Format("2006-01-02"))
	}

	return fmt.Sprintf(`You are a technical writer creating a changelog summary. Analyze these commits and write a professional release notes summary.

## Version: %s
## Previous Version: %s
## Total Commits: %d

## Commit Statistics:
%s
## Commits:
%s
## Instructions:
Write a comprehensive changelog summary in %s with these sections:

1. **Overview** (2-3 sentences): What is the main theme or focus of this release?

2. **Highlights**: The most important changes users should know about. Be specific about what changed and why it matters.

3. **Detailed Changes**: Group related changes together logically (not just by commit type). For each group:
   - Give a descriptive heading
   - Write a brief paragraph explaining what was done and why
   - Include specific details where relevant

4. **Technical Notes** (if applicable): Breaking changes, migration notes, or important technical details.

Guidelines:
- Focus on user impact, not implementation details
- Combine related commits into coherent narratives
- Skip trivial changes (typos, minor refactors) unless they're part of a larger effort
- Use professional, clear language
- Be concise but informative

Output as markdown.`,
		req.Version, previous, len(req.Commits),
		typeSummary.String(), commitLines.String(), languageName)
}
