package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/config"
	"github.com/redgit/redgit/internal/git"
	"github.com/redgit/redgit/internal/integrations"
	"github.com/redgit/redgit/internal/version"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and integration connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		ok := func(format string, args ...interface{}) {
			fmt.Printf("  %s %s\n", green("✓"), fmt.Sprintf(format, args...))
		}
		warn := func(format string, args ...interface{}) {
			fmt.Printf("  %s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
		}
		bad := func(format string, args ...interface{}) {
			fmt.Printf("  %s %s\n", red("✗"), fmt.Sprintf(format, args...))
		}

		fmt.Printf("\n%s\n\n", cyan("=== redgit doctor ==="))

		g, err := git.NewGit(ctx)
		if err != nil {
			bad("git: %v", err)
			os.Exit(1)
		}
		ok("git binary found")

		repoRoot, err := g.RepoRoot(ctx, rootRepo)
		if err != nil {
			bad("not inside a git repository")
			os.Exit(1)
		}
		ok("repository: %s", repoRoot)

		cfg, err := loadConfig(repoRoot)
		if err != nil {
			bad("%v", err)
			os.Exit(1)
		}
		ok("configuration loaded (%s/%s)", config.Dir, config.FileName)

		m := version.NewManager(cfg, repoRoot, g)
		if current, err := m.Current(ctx); err != nil {
			bad("version: %v", err)
		} else if current == nil {
			warn("version not initialized (run 'redgit version init')")
		} else {
			ok("version: %s", current)
		}

		if cfg.AI.Disabled {
			fmt.Printf("  %s AI summaries disabled in config\n", gray("-"))
		} else if os.Getenv("ANTHROPIC_API_KEY") == "" {
			warn("ANTHROPIC_API_KEY not set, AI summaries will be skipped")
		} else {
			ok("AI summaries enabled")
		}

		registry := buildRegistry(cfg)
		if notifiers := registry.Notifiers(); len(notifiers) == 0 {
			fmt.Printf("  %s no notifiers configured\n", gray("-"))
		} else {
			for _, n := range notifiers {
				ok("notifier: %s", n.Name())
			}
		}

		if tracker := registry.Tracker(); tracker == nil {
			fmt.Printf("  %s error tracking not configured\n", gray("-"))
		} else if client, isSentry := tracker.(*integrations.SentryClient); isSentry {
			if err := client.Ping(ctx); err != nil {
				bad("sentry (%s/%s): %v", client.Organization(), client.Project(), err)
			} else {
				ok("sentry: %s/%s reachable", client.Organization(), client.Project())
			}
		} else {
			ok("error tracker: %s", tracker.Name())
		}

		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
