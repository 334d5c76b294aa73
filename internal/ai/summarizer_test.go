package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redgit/redgit/internal/changelog"
	"github.com/redgit/redgit/internal/git"
)

func TestGetModel(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("REDGIT_MODEL", "claude-test-model")
		assert.Equal(t, "claude-test-model", GetModel("configured-model"))
	})

	t.Run("configured model", func(t *testing.T) {
		t.Setenv("REDGIT_MODEL", "")
		assert.Equal(t, "configured-model", GetModel("configured-model"))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("REDGIT_MODEL", "")
		assert.Equal(t, ModelDefault, GetModel(""))
	})
}

func TestNewSummarizerRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewSummarizer(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestBuildReleasePrompt(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	req := changelog.SummaryRequest{
		Version:     "1.2.0",
		PreviousRef: "v1.1.0",
		Language:    "de",
		Commits: []git.Commit{
			{Subject: "feat: add login flow", Author: "Alice", Timestamp: ts},
			{Subject: "fix: handle nil session", Author: "Bob", Timestamp: ts},
		},
		TypeCounts: map[string]int{"feat": 1, "fix": 1},
	}

	prompt := buildReleasePrompt(req)

	assert.Contains(t, prompt, "## Version: 1.2.0")
	assert.Contains(t, prompt, "## Previous Version: v1.1.0")
	assert.Contains(t, prompt, "## Total Commits: 2")
	assert.Contains(t, prompt, "- Features: 1")
	assert.Contains(t, prompt, "- Bug Fixes: 1")
	assert.Contains(t, prompt, "feat: add login flow (by Alice, 2024-03-10)")
	assert.Contains(t, prompt, "summary in German")
}

func TestBuildReleasePromptInitialRelease(t *testing.T) {
	req := changelog.SummaryRequest{
		Version: "0.1.0",
		Commits: []git.Commit{{Subject: "feat: bootstrap", Author: "Alice", Timestamp: time.Now()}},
	}

	prompt := buildReleasePrompt(req)
	assert.Contains(t, prompt, "## Previous Version: Initial Release")
	assert.Contains(t, prompt, "summary in English")
}

func TestBuildReleasePromptUnknownLanguagePassesThrough(t *testing.T) {
	req := changelog.SummaryRequest{
		Version:  "0.1.0",
		Language: "pt",
		Commits:  []git.Commit{{Subject: "fix: x", Author: "A", Timestamp: time.Now()}},
	}
	assert.Contains(t, buildReleasePrompt(req), "summary in pt")
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(context.Canceled))
	assert.False(t, isRetryable(context.DeadlineExceeded))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func(context.Context) error {
		calls++
		return context.Canceled
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, func(context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}
