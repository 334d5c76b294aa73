// Package config loads and persists the redgit configuration.
//
// Configuration lives in .redgit/config.yaml relative to the repository
// root. Values can be overridden through REDGIT_* environment variables
// (e.g. REDGIT_CHANGELOG_OUTPUT_DIR). Secrets such as API tokens are
// normally supplied via their conventional environment variables
// (SENTRY_AUTH_TOKEN, SLACK_WEBHOOK_URL, ANTHROPIC_API_KEY) rather than
// the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Dir is the directory holding redgit state, relative to the repo root.
const Dir = ".redgit"

// FileName is the config file name inside Dir.
const FileName = "config.yaml"

// ErrNotInitialized is returned when no config file exists.
var ErrNotInitialized = errors.New("redgit not initialized (run 'redgit init')")

// Config is the full redgit configuration tree.
type Config struct {
	Language  string           `yaml:"language" mapstructure:"language"`
	Changelog ChangelogConfig  `yaml:"changelog" mapstructure:"changelog"`
	Version   VersionConfig    `yaml:"version" mapstructure:"version"`
	AI        AIConfig         `yaml:"ai" mapstructure:"ai"`
	Sentry    SentryConfig     `yaml:"sentry" mapstructure:"sentry"`
	Notifiers []NotifierConfig `yaml:"notifiers" mapstructure:"notifiers"`
}

// ChangelogConfig controls changelog generation.
type ChangelogConfig struct {
	// OutputDir is where per-version changelog files are written.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// Language overrides the top-level language for AI summaries.
	Language string `yaml:"language,omitempty" mapstructure:"language"`

	// UpdateMain controls whether CHANGELOG.md is updated after generation.
	UpdateMain bool `yaml:"update_main" mapstructure:"update_main"`
}

// VersionConfig holds semantic versioning state.
type VersionConfig struct {
	// Current is the current project version (without tag prefix).
	Current string `yaml:"current,omitempty" mapstructure:"current"`

	// TagPrefix is prepended to versions when tagging (default "v").
	TagPrefix string `yaml:"tag_prefix" mapstructure:"tag_prefix"`
}

// AIConfig controls the release summary generation.
type AIConfig struct {
	// Model overrides the default Anthropic model.
	Model string `yaml:"model,omitempty" mapstructure:"model"`

	// MaxTokens bounds the summary length (default 2048).
	MaxTokens int `yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`

	// Disabled skips AI summaries entirely.
	Disabled bool `yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// SentryConfig configures the Sentry error-tracking integration.
type SentryConfig struct {
	Organization string `yaml:"organization,omitempty" mapstructure:"organization"`
	Project      string `yaml:"project,omitempty" mapstructure:"project"`

	// BaseURL allows pointing at a self-hosted Sentry (default sentry.io).
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Environment filters error reports (default "production").
	Environment string `yaml:"environment,omitempty" mapstructure:"environment"`

	// MinConfidence is the match-score floor for proposed error matches.
	// Must be within [0, 1].
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`

	// AuthToken is normally left empty and read from SENTRY_AUTH_TOKEN.
	AuthToken string `yaml:"auth_token,omitempty" mapstructure:"auth_token"`
}

// NotifierConfig configures one notification target.
type NotifierConfig struct {
	// Kind selects the implementation: "slack" or "discord".
	Kind string `yaml:"kind" mapstructure:"kind"`

	// WebhookURL is the incoming-webhook endpoint. For slack it may be
	// left empty and read from SLACK_WEBHOOK_URL.
	WebhookURL string `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`

	// Channel overrides the webhook's default channel (slack only).
	Channel string `yaml:"channel,omitempty" mapstructure:"channel"`

	// Username is the display name for posted messages.
	Username string `yaml:"username,omitempty" mapstructure:"username"`

	// Events filters which events are sent: "release", "changelog", "error".
	// Empty means all events.
	Events []string `yaml:"events,omitempty" mapstructure:"events"`
}

// Default returns the configuration written by 'redgit init'.
func Default() *Config {
	return &Config{
		Language: "en",
		Changelog: ChangelogConfig{
			OutputDir:  "changelogs",
			UpdateMain: true,
		},
		Version: VersionConfig{
			TagPrefix: "v",
		},
		AI: AIConfig{
			MaxTokens: 2048,
		},
		Sentry: SentryConfig{
			Environment:   "production",
			MinConfidence: 0.5,
		},
	}
}

// Load reads the configuration from repoRoot/.redgit/config.yaml,
// applies environment overrides, and validates the result.
func Load(repoRoot string) (*Config, error) {
	path := filepath.Join(repoRoot, Dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("REDGIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("language", "en")
	v.SetDefault("changelog.output_dir", "changelogs")
	v.SetDefault("changelog.update_main", true)
	v.SetDefault("version.tag_prefix", "v")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.min_confidence", 0.5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range or inconsistent values.
// Threshold misconfiguration is rejected here, at load time, so the match
// engine never sees an invalid floor.
func (c *Config) Validate() error {
	if c.Sentry.MinConfidence < 0.0 || c.Sentry.MinConfidence > 1.0 {
		return fmt.Errorf("sentry.min_confidence must be between 0.0 and 1.0 (got %.2f)", c.Sentry.MinConfidence)
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens cannot be negative (got %d)", c.AI.MaxTokens)
	}
	if c.Changelog.OutputDir == "" {
		return fmt.Errorf("changelog.output_dir cannot be empty")
	}
	if filepath.IsAbs(c.Changelog.OutputDir) {
		return fmt.Errorf("changelog.output_dir must be relative to the repository root (got %s)", c.Changelog.OutputDir)
	}
	for i, n := range c.Notifiers {
		switch n.Kind {
		case "slack", "discord":
		default:
			return fmt.Errorf("notifiers[%d].kind must be \"slack\" or \"discord\" (got %q)", i, n.Kind)
		}
	}
	return nil
}

// Save writes the configuration to repoRoot/.redgit/config.yaml,
// creating the directory if needed.
func (c *Config) Save(repoRoot string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dir := filepath.Join(repoRoot, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// SummaryLanguage resolves the language used for AI summaries:
// changelog.language wins over the top-level language, default "en".
func (c *Config) SummaryLanguage() string {
	if c.Changelog.Language != "" {
		return c.Changelog.Language
	}
	if c.Language != "" {
		return c.Language
	}
	return "en"
}

// SentryToken resolves the Sentry auth token, preferring the config value
// over the SENTRY_AUTH_TOKEN environment variable.
func (c *Config) SentryToken() string {
	if c.Sentry.AuthToken != "" {
		return c.Sentry.AuthToken
	}
	return os.Getenv("SENTRY_AUTH_TOKEN")
}
