package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/changelog"
	"github.com/redgit/redgit/internal/config"
	"github.com/redgit/redgit/internal/git"
	"github.com/redgit/redgit/internal/integrations"
	"github.com/redgit/redgit/internal/logger"
	"github.com/redgit/redgit/internal/storage"
)

var (
	changelogVersion    string
	changelogFrom       string
	changelogTo         string
	changelogLang       string
	changelogNoAI       bool
	changelogUpdateMain bool
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate and inspect changelogs",
}

var changelogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a changelog for a version",
	Long: `Generate a changelog from git history.

Merge commits and duplicated messages are removed, the remaining commits are
grouped by conventional-commit type, and contributor statistics are appended.
Unless disabled, an AI-written summary heads the document.

Example:
  redgit changelog generate -v 1.2.0
  redgit changelog generate -v 1.2.0 --from v1.1.0 --no-ai`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if changelogVersion == "" {
			fail("--version is required")
		}

		g, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		fromRef := changelogFrom
		if fromRef == "" {
			// Default the range to everything since the last version tag.
			fromRef, err = g.LatestTag(ctx, repoRoot)
			if err != nil {
				fail("%v", err)
			}
		}

		updateMain := cfg.Changelog.UpdateMain
		if cmd.Flags().Changed("update-main") {
			updateMain = changelogUpdateMain
		}

		lang := changelogLang
		if lang == "" {
			lang = cfg.SummaryLanguage()
		}

		doc, err := generateChangelog(ctx, g, cfg, changelogGenerateOptions{
			RepoRoot:   repoRoot,
			Version:    changelogVersion,
			FromRef:    fromRef,
			ToRef:      changelogTo,
			Language:   lang,
			SkipAI:     changelogNoAI,
			UpdateMain: updateMain,
		})
		if err != nil {
			fail("%v", err)
		}

		printChangelogResult(doc, fromRef)

		registry := buildRegistry(cfg)
		registry.Dispatch(ctx, integrations.Event{
			Kind:  integrations.EventChangelog,
			Title: fmt.Sprintf("Changelog generated for %s", changelogVersion),
			Body:  fmt.Sprintf("%d commits, %d contributors", doc.CommitCount(), len(doc.Stats)),
		})
	},
}

// changelogGenerateOptions collects the inputs shared by the generate
// command and the release hook.
type changelogGenerateOptions struct {
	RepoRoot   string
	Version    string
	FromRef    string
	ToRef      string
	Language   string
	SkipAI     bool
	UpdateMain bool
}

// generateChangelog runs the generator and records the release row. Shared
// with 'version release'.
func generateChangelog(ctx context.Context, reader git.LogReader, cfg *config.Config, opts changelogGenerateOptions) (*changelog.Document, error) {
	gen := changelog.NewGenerator(reader, newSummarizer(cfg))

	doc, err := gen.Generate(ctx, changelog.Options{
		Version:     opts.Version,
		FromRef:     opts.FromRef,
		ToRef:       opts.ToRef,
		Language:    opts.Language,
		SkipSummary: opts.SkipAI,
		UpdateMain:  opts.UpdateMain,
		RepoRoot:    opts.RepoRoot,
		OutputDir:   cfg.Changelog.OutputDir,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(filepath.Join(opts.RepoRoot, config.Dir, "releases.db"))
	if err != nil {
		logger.Warn("release history not recorded", "error", err)
		return doc, nil
	}
	defer func() { _ = store.Close() }()

	err = store.RecordRelease(ctx, &storage.Release{
		Version:          doc.Version,
		FromRef:          doc.FromRef,
		CommitCount:      doc.CommitCount(),
		ContributorCount: len(doc.Stats),
		FilePath:         doc.VersionFile,
	})
	if err != nil {
		logger.Warn("release history not recorded", "error", err)
	}
	return doc, nil
}

func printChangelogResult(doc *changelog.Document, fromRef string) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s Changelog generated for %s\n\n", green("✓"), cyan(doc.Version))
	if fromRef != "" {
		fmt.Printf("  Range:        %s..HEAD\n", fromRef)
	} else {
		fmt.Printf("  Range:        all history\n")
	}
	fmt.Printf("  Commits:      %d (%d removed as merge/duplicate)\n", doc.CommitCount(), len(doc.Removed))
	fmt.Printf("  Contributors: %d\n", len(doc.Stats))
	fmt.Printf("  File:         %s\n", cyan(doc.VersionFile))
	if doc.MainFile != "" {
		fmt.Printf("  Updated:      %s\n", cyan(doc.MainFile))
	}
	if doc.Summary == "" {
		fmt.Printf("  %s\n", gray("No AI summary (disabled or unavailable)"))
	}
	fmt.Println()
}

var changelogShowCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Print a generated changelog",
	Args:  cobra.MaximumNArgs(1),
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

		var path string
		if len(args) > 0 {
			path = filepath.Join(repoRoot, cfg.Changelog.OutputDir, changelog.VersionFileName(args[0]))
		} else {
			path = filepath.Join(repoRoot, "CHANGELOG.md")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				fail("no changelog at %s (run 'redgit changelog generate')", path)
			}
			fail("%v", err)
		}
		fmt.Print(string(data))
	},
}

var changelogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated changelogs",
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

		recorded := map[string]*storage.Release{}
		if store, err := storage.Open(filepath.Join(repoRoot, config.Dir, "releases.db")); err == nil {
			releases, err := store.ListReleases(ctx)
			_ = store.Close()
			if err == nil {
				for _, r := range releases {
					if recorded[r.Version] == nil {
						recorded[r.Version] = r
					}
				}
			}
		}

		dir := filepath.Join(repoRoot, cfg.Changelog.OutputDir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No changelogs generated yet.")
				return
			}
			fail("%v", err)
		}

		var versions []string
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			versions = append(versions, strings.TrimSuffix(name, ".md"))
		}
		if len(versions) == 0 {
			fmt.Println("No changelogs generated yet.")
			return
		}
		sort.Sort(sort.Reverse(sort.StringSlice(versions)))

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\nChangelogs in %s:\n\n", dir)
		for _, v := range versions {
			line := fmt.Sprintf("  %s", cyan(v))
			if r := recorded[strings.TrimPrefix(v, "v")]; r != nil {
				line += gray(fmt.Sprintf("  %s, %d commits, %d contributors",
					r.GeneratedAt.Format("2006-01-02"), r.CommitCount, r.ContributorCount))
			}
			fmt.Println(line)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.AddCommand(changelogGenerateCmd)
	changelogCmd.AddCommand(changelogShowCmd)
	changelogCmd.AddCommand(changelogListCmd)

	changelogGenerateCmd.Flags().StringVarP(&changelogVersion, "version", "v", "", "Version to generate the changelog for")
	changelogGenerateCmd.Flags().StringVar(&changelogFrom, "from", "", "Start ref (default: latest tag)")
	changelogGenerateCmd.Flags().StringVar(&changelogTo, "to", "", "End ref (default: HEAD)")
	changelogGenerateCmd.Flags().StringVar(&changelogLang, "lang", "", "Summary language code (default from config)")
	changelogGenerateCmd.Flags().BoolVar(&changelogNoAI, "no-ai", false, "Skip the AI summary")
	changelogGenerateCmd.Flags().BoolVar(&changelogUpdateMain, "update-main", true, "Update the aggregate CHANGELOG.md")
}
