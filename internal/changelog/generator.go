package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redgit/redgit/internal/git"
	"github.com/redgit/redgit/internal/logger"
)

// Summarizer writes a prose release summary for a set of commits.
// Implementations call out to an AI model; a nil Summarizer or a failed
// call degrades to a changelog without a summary, never an error.
type Summarizer interface {
	SummarizeRelease(ctx context.Context, req SummaryRequest) (string, error)
}

// SummaryRequest carries everything the summarizer needs.
type SummaryRequest struct {
	// Version is the version being released.
	Version string

	// PreviousRef is the lower bound of the range, empty for an initial
	// release.
	PreviousRef string

	// Language is the output language code (e.g. "en", "de").
	Language string

	// Commits are the deduplicated commits in the range.
	Commits []git.Commit

	// TypeCounts maps changelog type to entry count, for prompt context.
	TypeCounts map[string]int
}

// Options configures one changelog generation run.
type Options struct {
	// Version is the version to generate for (no tag prefix).
	Version string

	// FromRef is the starting ref; empty means all commits.
	FromRef string

	// ToRef is the ending ref, default HEAD.
	ToRef string

	// Language for the AI summary.
	Language string

	// SkipSummary disables the AI summary for this run.
	SkipSummary bool

	// UpdateMain controls whether CHANGELOG.md is rewritten.
	UpdateMain bool

	// RepoRoot is the repository root directory.
	RepoRoot string

	// OutputDir is the changelog directory relative to RepoRoot.
	OutputDir string

	// Now overrides the release date, for deterministic tests.
	Now time.Time
}

// Generator produces versioned changelog documents from git history.
type Generator struct {
	reader     git.LogReader
	summarizer Summarizer
}

// NewGenerator creates a Generator. summarizer may be nil to disable AI
// summaries.
func NewGenerator(reader git.LogReader, summarizer Summarizer) *Generator {
	return &Generator{reader: reader, summarizer: summarizer}
}

// Generate reads the commit range, deduplicates and groups it, renders the
// markdown document, and writes the per-version file plus the aggregate
// CHANGELOG.md. An empty range produces an empty changelog, not an error.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Document, error) {
	if opts.Version == "" {
		return nil, fmt.Errorf("version is required")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	commits, err := g.reader.Log(ctx, opts.RepoRoot, opts.FromRef, opts.ToRef)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit range: %w", err)
	}

	unique, removed := Deduplicate(commits)
	grouped := GroupByType(unique)
	stats := ContributorStats(unique)

	summary := ""
	if g.summarizer != nil && !opts.SkipSummary && len(unique) > 0 {
		typeCounts := make(map[string]int, len(grouped))
		for typ, entries := range grouped {
			typeCounts[typ] = len(entries)
		}
		summary, err = g.summarizer.SummarizeRelease(ctx, SummaryRequest{
			Version:     opts.Version,
			PreviousRef: opts.FromRef,
			Language:    opts.Language,
			Commits:     unique,
			TypeCounts:  typeCounts,
		})
		if err != nil {
			logger.Warn("AI summary skipped", "error", err)
			summary = ""
		}
	}

	content := RenderMarkdown(opts.Version, grouped, opts.FromRef, summary, stats, now)

	doc := &Document{
		Version: opts.Version,
		FromRef: opts.FromRef,
		Content: content,
		Entries: grouped,
		Removed: removed,
		Stats:   stats,
		Summary: summary,
	}

	versionFile, err := g.writeVersionFile(opts, content)
	if err != nil {
		return nil, err
	}
	doc.VersionFile = versionFile

	if opts.UpdateMain {
		mainFile, err := g.updateMainChangelog(opts.RepoRoot, content)
		if err != nil {
			return nil, err
		}
		doc.MainFile = mainFile
	}

	return doc, nil
}

// VersionFileName returns the per-version file name for a version.
func VersionFileName(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version + ".md"
}

func (g *Generator) writeVersionFile(opts Options, content string) (string, error) {
	dir := filepath.Join(opts.RepoRoot, opts.OutputDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create changelog directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, VersionFileName(opts.Version))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write changelog %s: %w", path, err)
	}
	return path, nil
}

func (g *Generator) updateMainChangelog(repoRoot, content string) (string, error) {
	path := filepath.Join(repoRoot, "CHANGELOG.md")

	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	merged := MergeIntoMain(existing, strings.TrimRight(content, "\n"))
	if err := os.WriteFile(path, []byte(merged), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
