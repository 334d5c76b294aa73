package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/ai"
	"github.com/redgit/redgit/internal/changelog"
	"github.com/redgit/redgit/internal/config"
	"github.com/redgit/redgit/internal/git"
	"github.com/redgit/redgit/internal/integrations"
	"github.com/redgit/redgit/internal/logger"
)

var (
	rootRepo     string
	rootLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "redgit",
	Short: "Release tooling for git repositories",
	Long: `redgit generates changelogs from git history, manages semantic versions,
and connects releases to error tracking and chat notifications.

Configuration lives in .redgit/config.yaml; run 'redgit init' to create it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.Configure(rootLogLevel, ""); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootRepo, "repo", ".", "Path inside the git repository to operate on")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, or error")
}

// openRepo locates git and resolves the repository root from --repo.
func openRepo(ctx context.Context) (*git.Git, string, error) {
	g, err := git.NewGit(ctx)
	if err != nil {
		return nil, "", err
	}
	root, err := g.RepoRoot(ctx, rootRepo)
	if err != nil {
		return nil, "", fmt.Errorf("not a git repository: %s", rootRepo)
	}
	return g, root, nil
}

// loadConfig reads the repo configuration, translating the uninitialized
// case into a hint.
func loadConfig(repoRoot string) (*config.Config, error) {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		if errors.Is(err, config.ErrNotInitialized) {
			return nil, fmt.Errorf("no configuration found in %s (run 'redgit init')", repoRoot)
		}
		return nil, err
	}
	return cfg, nil
}

// buildRegistry assembles the active integrations from configuration.
// Misconfigured notifiers are skipped with a warning so one bad webhook
// does not take the CLI down.
func buildRegistry(cfg *config.Config) *integrations.Registry {
	var notifiers []integrations.Notifier
	for _, nc := range cfg.Notifiers {
		switch nc.Kind {
		case "slack":
			n, err := integrations.NewSlackNotifier(integrations.SlackConfig{
				WebhookURL: nc.WebhookURL,
				Channel:    nc.Channel,
				Username:   nc.Username,
				Events:     nc.Events,
			})
			if err != nil {
				logger.Warn("skipping slack notifier", "error", err)
				continue
			}
			notifiers = append(notifiers, n)
		case "discord":
			n, err := integrations.NewDiscordNotifier(integrations.DiscordConfig{
				WebhookURL: nc.WebhookURL,
				Username:   nc.Username,
				Events:     nc.Events,
			})
			if err != nil {
				logger.Warn("skipping discord notifier", "error", err)
				continue
			}
			notifiers = append(notifiers, n)
		default:
			logger.Warn("unknown notifier kind", "kind", nc.Kind)
		}
	}

	var tracker integrations.ErrorTracker
	if cfg.Sentry.Organization != "" && cfg.Sentry.Project != "" {
		client, err := integrations.NewSentryClient(integrations.SentryConfig{
			Organization: cfg.Sentry.Organization,
			Project:      cfg.Sentry.Project,
			AuthToken:    cfg.SentryToken(),
			BaseURL:      cfg.Sentry.BaseURL,
			Environment:  cfg.Sentry.Environment,
		})
		if err != nil {
			logger.Warn("sentry integration disabled", "error", err)
		} else {
			tracker = client
		}
	}

	return integrations.NewRegistry(notifiers, tracker)
}

// newSummarizer builds the AI summarizer, or nil when summaries are
// disabled or no API key is available.
func newSummarizer(cfg *config.Config) changelog.Summarizer {
	if cfg.AI.Disabled {
		return nil
	}
	s, err := ai.NewSummarizer(ai.Config{
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil {
		logger.Warn("AI summaries disabled", "error", err)
		return nil
	}
	return s
}

// fail prints an error and exits, the shared unhappy path for commands.
func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
