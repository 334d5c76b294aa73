package main

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/integrations"
	"github.com/redgit/redgit/internal/version"
)

var (
	versionInitValue      string
	versionSetUpdateFiles bool
	releaseTag            bool
	releasePush           bool
	releaseChangelog      bool
	releaseNoAI           bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Semantic versioning management",
}

var versionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current version",
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

		m := version.NewManager(cfg, repoRoot, g)
		current, err := m.Current(ctx)
		if err != nil {
			fail("%v", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if current == nil {
			fmt.Println("No version found. Run 'redgit version init' to set up versioning.")
			return
		}

		fmt.Printf("%s %s\n", cyan("Current version:"), current)
		if files := m.VersionFiles(); len(files) > 0 {
			fmt.Printf("\n%s\n", gray("Version files:"))
			for _, f := range files {
				fmt.Printf("  %s\n", gray("- "+f))
			}
		}
	},
}

var versionInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize versioning for the project",
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

		m := version.NewManager(cfg, repoRoot, g)
		if current, err := m.Current(ctx); err == nil && current != nil && cfg.Version.Current != "" {
			fail("version already initialized: %s (use 'redgit version set' to change it)", current)
		}

		v, err := semver.NewVersion(versionInitValue)
		if err != nil {
			fail("invalid version format %q (use MAJOR.MINOR.PATCH, e.g. 1.0.0)", versionInitValue)
		}
		if err := m.SetCurrent(v); err != nil {
			fail("%v", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Version initialized: %s\n", green("✓"), v)
	},
}

var versionSetCmd = &cobra.Command{
	Use:   "set <version>",
	Short: "Set a specific version",
	Args:  cobra.ExactArgs(1),
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

		next, err := semver.NewVersion(args[0])
		if err != nil {
			fail("invalid version format %q (use MAJOR.MINOR.PATCH, e.g. 1.2.0)", args[0])
		}

		m := version.NewManager(cfg, repoRoot, g)
		old, err := m.Current(ctx)
		if err != nil {
			fail("%v", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if versionSetUpdateFiles && old != nil {
			updated, err := m.UpdateFiles(old, next)
			if err != nil {
				fail("%v", err)
			}
			for _, f := range updated {
				fmt.Printf("  %s\n", gray("updated "+f))
			}
		}

		if err := m.SetCurrent(next); err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s Version set: %s\n", green("✓"), next)
	},
}

var versionReleaseCmd = &cobra.Command{
	Use:   "release <patch|minor|major>",
	Short: "Release a new version by bumping the given level",
	Long: `Bump the version, update version files, generate the changelog, create an
annotated git tag, and notify configured channels.

Example:
  redgit version release patch
  redgit version release minor --push
  redgit version release major --no-changelog --no-tag`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		level, err := version.ParseLevel(args[0])
		if err != nil {
			fail("%v", err)
		}

		g, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		m := version.NewManager(cfg, repoRoot, g)
		current, err := m.Current(ctx)
		if err != nil {
			fail("%v", err)
		}
		if current == nil {
			fail("no version found (run 'redgit version init' first)")
		}

		next := version.Bump(current, level)

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("%s Bumping version: %s -> %s\n", cyan("→"), current, next)

		updated, err := m.UpdateFiles(current, next)
		if err != nil {
			fail("%v", err)
		}
		for _, f := range updated {
			fmt.Printf("  %s\n", gray("updated "+f))
		}

		if err := m.SetCurrent(next); err != nil {
			fail("%v", err)
		}

		if releaseChangelog {
			fmt.Printf("%s Generating changelog...\n", cyan("→"))
			doc, err := generateChangelog(ctx, g, cfg, changelogGenerateOptions{
				RepoRoot:   repoRoot,
				Version:    next.String(),
				FromRef:    m.TagName(current),
				Language:   cfg.SummaryLanguage(),
				SkipAI:     releaseNoAI,
				UpdateMain: cfg.Changelog.UpdateMain,
			})
			if err != nil {
				fmt.Printf("  %s\n", yellow(fmt.Sprintf("changelog generation skipped: %v", err)))
			} else {
				fmt.Printf("  %s\n", gray("wrote "+doc.VersionFile))
			}
		}

		tagName := ""
		if releaseTag {
			tagName, err = m.CreateTag(ctx, next, releasePush)
			if err != nil {
				fmt.Printf("  %s\n", yellow(fmt.Sprintf("failed to create/push tag: %v", err)))
			} else {
				fmt.Printf("%s Created tag: %s\n", green("✓"), cyan(tagName))
				if releasePush {
					fmt.Printf("%s Pushed tag: %s\n", green("✓"), cyan(tagName))
				}
			}
		}

		registry := buildRegistry(cfg)

		// Register the release with the error tracker so errors can be
		// resolved "in this release".
		if client, isSentry := registry.Tracker().(*integrations.SentryClient); isSentry {
			var refs []integrations.CommitRef
			if sha, err := g.CurrentCommitHash(ctx, repoRoot); err == nil {
				refs = append(refs, integrations.CommitRef{Commit: sha})
			}
			if err := client.CreateRelease(ctx, next.String(), refs); err != nil {
				fmt.Printf("  %s\n", yellow(fmt.Sprintf("sentry release not created: %v", err)))
			} else {
				fmt.Printf("%s Registered release %s with sentry\n", green("✓"), cyan(next.String()))
			}
		}

		registry.Dispatch(ctx, integrations.Event{
			Kind:  integrations.EventRelease,
			Title: fmt.Sprintf("Released version %s", next),
			Body:  fmt.Sprintf("Bumped %s from %s. Tag: %s", level, current, tagName),
		})

		fmt.Printf("\n%s Released version %s\n", green("✓"), cyan(next.String()))
	},
}

var versionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List version tags from git history",
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

		m := version.NewManager(cfg, repoRoot, g)
		tags, err := m.ListTags(ctx)
		if err != nil {
			fail("%v", err)
		}
		if len(tags) == 0 {
			fmt.Println("No version tags found.")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\nVersion history:\n\n")
		const limit = 20
		for i, tag := range tags {
			if i == limit {
				fmt.Printf("  %s\n", gray(fmt.Sprintf("... and %d more", len(tags)-limit)))
				break
			}
			fmt.Printf("  %s  %s\n", cyan(tag.Version), gray(tag.Tag))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionShowCmd)
	versionCmd.AddCommand(versionInitCmd)
	versionCmd.AddCommand(versionSetCmd)
	versionCmd.AddCommand(versionReleaseCmd)
	versionCmd.AddCommand(versionListCmd)

	versionInitCmd.Flags().StringVarP(&versionInitValue, "version", "v", "0.1.0", "Initial version")
	versionSetCmd.Flags().BoolVar(&versionSetUpdateFiles, "update-files", true, "Update version in project files")
	versionReleaseCmd.Flags().BoolVar(&releaseTag, "tag", true, "Create a git tag for the release")
	versionReleaseCmd.Flags().BoolVarP(&releasePush, "push", "p", false, "Push the tag to origin")
	versionReleaseCmd.Flags().BoolVar(&releaseChangelog, "changelog", true, "Generate the changelog")
	versionReleaseCmd.Flags().BoolVar(&releaseNoAI, "no-ai", false, "Skip the AI summary in the changelog")
}
