package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/integrations"
	"github.com/redgit/redgit/internal/logger"
	"github.com/redgit/redgit/internal/match"
)

var (
	sentryStatus      string
	sentryEnvironment string
	sentryLimit       int
	resolveStatus     string
	resolveRelease    string
	resolveCommit     string
	proposeFrom       string
	proposeTo         string
	proposeMinScore   float64
)

var sentryCmd = &cobra.Command{
	Use:   "sentry",
	Short: "Work with Sentry error reports",
}

var sentryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent error reports",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		tracker := buildRegistry(cfg).Tracker()
		if tracker == nil {
			fail("no error tracker configured (set sentry.organization and sentry.project)")
		}

		env := sentryEnvironment
		if env == "" {
			env = cfg.Sentry.Environment
		}

		reports, err := tracker.RecentErrors(ctx, integrations.ErrorQuery{
			Status:      sentryStatus,
			Environment: env,
			Limit:       sentryLimit,
		})
		if err != nil {
			logger.Warn("error tracker unreachable", "error", err)
			fmt.Println("No error reports available.")
			return
		}
		if len(reports) == 0 {
			fmt.Println("No error reports found.")
			return
		}

		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%d error reports (%s, %s):\n\n", len(reports), sentryStatus, env)
		for _, r := range reports {
			level := yellow
			if r.Level == "error" || r.Level == "fatal" {
				level = red
			}
			fmt.Printf("  %s %s %s\n", cyan(r.ShortID), level(r.Level), r.Title)
			fmt.Printf("    %s\n", gray(fmt.Sprintf("%s · %d events · %d users · last seen %s",
				r.Location, r.Count, r.UserCount, r.LastSeen)))
		}
		fmt.Println()
	},
}

var sentryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one error report with its stacktrace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		tracker := buildRegistry(cfg).Tracker()
		if tracker == nil {
			fail("no error tracker configured (set sentry.organization and sentry.project)")
		}

		report, err := tracker.GetError(ctx, args[0])
		if err != nil {
			fail("%v", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s %s\n\n", cyan(report.ShortID), report.Title)
		fmt.Printf("  Status:      %s\n", report.Status)
		fmt.Printf("  Level:       %s\n", report.Level)
		fmt.Printf("  Environment: %s\n", report.Environment)
		fmt.Printf("  Location:    %s\n", report.Location)
		fmt.Printf("  Events:      %d (%d users)\n", report.Count, report.UserCount)
		fmt.Printf("  First seen:  %s\n", report.FirstSeen)
		fmt.Printf("  Last seen:   %s\n", report.LastSeen)
		if report.Permalink != "" {
			fmt.Printf("  Link:        %s\n", report.Permalink)
		}

		if len(report.Stacktrace) > 0 {
			fmt.Printf("\n%s\n", yellow("Stacktrace (innermost last):"))
			for _, frame := range report.Stacktrace {
				marker := gray("  ")
				if frame.InApp {
					marker = cyan("→ ")
				}
				fmt.Printf("  %s%s:%d in %s\n", marker, frame.File, frame.Line, frame.Function)
			}
		}

		if len(report.AffectedFiles) > 0 {
			fmt.Printf("\n%s\n", yellow("Affected files:"))
			for _, f := range report.AffectedFiles {
				fmt.Printf("  - %s\n", f)
			}
		}
		fmt.Println()
	},
}

var sentryResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Change an error report's status",
	Long: `Set an error report's status: resolved, ignored, or unresolved.

Example:
  redgit sentry resolve PROJ-123
  redgit sentry resolve PROJ-123 --status ignored
  redgit sentry resolve PROJ-123 --release 1.2.0
  redgit sentry resolve PROJ-123 --commit abc1234`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		tracker := buildRegistry(cfg).Tracker()
		if tracker == nil {
			fail("no error tracker configured (set sentry.organization and sentry.project)")
		}

		if err := tracker.ResolveError(ctx, args[0], resolveStatus, resolveRelease); err != nil {
			fail("%v", err)
		}

		if resolveCommit != "" {
			if err := tracker.LinkCommit(ctx, args[0], resolveCommit); err != nil {
				logger.Warn("failed to link commit", "error", err)
			}
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s marked %s\n", green("✓"), args[0], resolveStatus)
	},
}

var sentryProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose matches between changed files and open errors",
	Long: `Match the files changed in the working tree (or a ref range) against
recent unresolved error reports and print match candidates ranked by
confidence.

Example:
  redgit sentry propose
  redgit sentry propose --from v1.1.0 --to HEAD
  redgit sentry propose --min-confidence 0.8`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		g, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		tracker := buildRegistry(cfg).Tracker()
		if tracker == nil {
			fail("no error tracker configured (set sentry.organization and sentry.project)")
		}

		minConfidence := cfg.Sentry.MinConfidence
		if cmd.Flags().Changed("min-confidence") {
			if proposeMinScore < 0 || proposeMinScore > 1 {
				fail("min-confidence must be between 0.0 and 1.0 (got %.2f)", proposeMinScore)
			}
			minConfidence = proposeMinScore
		}

		files, err := g.ChangedFiles(ctx, repoRoot, proposeFrom, proposeTo)
		if err != nil {
			fail("%v", err)
		}
		if len(files) == 0 {
			fmt.Println("No changed files to match.")
			return
		}

		reports, err := tracker.RecentErrors(ctx, integrations.ErrorQuery{
			Status:      "unresolved",
			Environment: cfg.Sentry.Environment,
			Limit:       100,
		})
		if err != nil {
			logger.Warn("error tracker unreachable", "error", err)
			fmt.Println("No matches (error tracker unavailable).")
			return
		}

		candidates := match.Match(files, reports, minConfidence)
		if len(candidates) == 0 {
			fmt.Printf("No matches at or above confidence %.2f.\n", minConfidence)
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%d match candidates (min confidence %.2f):\n\n", len(candidates), minConfidence)
		for _, c := range candidates {
			confidence := yellow
			if c.Confidence >= match.ConfidenceFramePath {
				confidence = green
			}
			fmt.Printf("  %s %s\n", confidence(fmt.Sprintf("%.2f", c.Confidence)), cyan(c.File))
			fmt.Printf("    %s\n", gray(fmt.Sprintf("%s · %s · %s", c.ErrorID, c.ErrorTitle, c.MatchType)))
		}
		fmt.Println()
	},
}

var sentryReleasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List recent releases known to Sentry",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		client, isSentry := buildRegistry(cfg).Tracker().(*integrations.SentryClient)
		if !isSentry {
			fail("no error tracker configured (set sentry.organization and sentry.project)")
		}

		releases, err := client.Releases(ctx, sentryLimit)
		if err != nil {
			fail("%v", err)
		}
		if len(releases) == 0 {
			fmt.Println("No releases found.")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\nReleases for %s/%s:\n\n", client.Organization(), client.Project())
		for _, r := range releases {
			line := fmt.Sprintf("  %s  %s", cyan(r.Version), gray(r.DateCreated))
			if r.NewGroups > 0 {
				line += gray(fmt.Sprintf("  %d new errors", r.NewGroups))
			}
			if r.LastDeploy != nil {
				line += gray("  deployed to " + r.LastDeploy.Environment)
			}
			fmt.Println(line)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(sentryCmd)
	sentryCmd.AddCommand(sentryListCmd)
	sentryCmd.AddCommand(sentryShowCmd)
	sentryCmd.AddCommand(sentryResolveCmd)
	sentryCmd.AddCommand(sentryProposeCmd)
	sentryCmd.AddCommand(sentryReleasesCmd)

	sentryListCmd.Flags().StringVar(&sentryStatus, "status", "unresolved", "Filter by status: unresolved, resolved, or ignored")
	sentryListCmd.Flags().StringVar(&sentryEnvironment, "env", "", "Filter by environment (default from config)")
	sentryListCmd.Flags().IntVar(&sentryLimit, "limit", 25, "Maximum number of reports")
	sentryReleasesCmd.Flags().IntVar(&sentryLimit, "limit", 25, "Maximum number of releases")

	sentryResolveCmd.Flags().StringVar(&resolveStatus, "status", "resolved", "New status: resolved, ignored, or unresolved")
	sentryResolveCmd.Flags().StringVar(&resolveRelease, "release", "", "Resolve in a specific release version")
	sentryResolveCmd.Flags().StringVar(&resolveCommit, "commit", "", "Link a commit SHA to the report")

	sentryProposeCmd.Flags().StringVar(&proposeFrom, "from", "", "Start ref for changed files (default: working tree vs HEAD)")
	sentryProposeCmd.Flags().StringVar(&proposeTo, "to", "", "End ref for changed files")
	sentryProposeCmd.Flags().Float64Var(&proposeMinScore, "min-confidence", 0, "Confidence floor (default from config)")
}
