package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNotInitialized(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInitialized))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := Default()
	cfg.Language = "de"
	cfg.Version.Current = "1.2.3"
	cfg.Sentry.Organization = "acme"
	cfg.Sentry.Project = "api"
	cfg.Sentry.MinConfidence = 0.8
	cfg.Notifiers = []NotifierConfig{
		{Kind: "slack", Channel: "#releases", Events: []string{"release"}},
	}
	require.NoError(t, cfg.Save(root))

	loaded, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "de", loaded.Language)
	assert.Equal(t, "1.2.3", loaded.Version.Current)
	assert.Equal(t, "acme", loaded.Sentry.Organization)
	assert.Equal(t, 0.8, loaded.Sentry.MinConfidence)
	require.Len(t, loaded.Notifiers, 1)
	assert.Equal(t, "slack", loaded.Notifiers[0].Kind)
	assert.Equal(t, "#releases", loaded.Notifiers[0].Channel)
	assert.Equal(t, []string{"release"}, loaded.Notifiers[0].Events)
}

func TestLoadRejectsInvalidMinConfidence(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, Dir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("sentry:\n  min_confidence: 1.5\n"), 0644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"negative min_confidence", func(c *Config) { c.Sentry.MinConfidence = -0.1 }, "min_confidence"},
		{"min_confidence above one", func(c *Config) { c.Sentry.MinConfidence = 1.01 }, "min_confidence"},
		{"boundary zero is valid", func(c *Config) { c.Sentry.MinConfidence = 0 }, ""},
		{"boundary one is valid", func(c *Config) { c.Sentry.MinConfidence = 1 }, ""},
		{"negative max_tokens", func(c *Config) { c.AI.MaxTokens = -1 }, "max_tokens"},
		{"empty output dir", func(c *Config) { c.Changelog.OutputDir = "" }, "output_dir"},
		{"absolute output dir", func(c *Config) { c.Changelog.OutputDir = "/tmp/changelogs" }, "output_dir"},
		{"unknown notifier kind", func(c *Config) {
			c.Notifiers = []NotifierConfig{{Kind: "teams"}}
		}, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSummaryLanguage(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "en", cfg.SummaryLanguage())

	cfg.Language = "tr"
	assert.Equal(t, "tr", cfg.SummaryLanguage())

	cfg.Changelog.Language = "fr"
	assert.Equal(t, "fr", cfg.SummaryLanguage())
}

func TestSentryToken(t *testing.T) {
	cfg := Default()

	t.Setenv("SENTRY_AUTH_TOKEN", "env-token")
	assert.Equal(t, "env-token", cfg.SentryToken())

	cfg.Sentry.AuthToken = "config-token"
	assert.Equal(t, "config-token", cfg.SentryToken())
}
