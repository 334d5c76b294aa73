package git

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Record/unit separators used in the log format so subjects and bodies
// containing newlines parse unambiguously.
const (
	recordSep = "\x1e"
	groupSep  = "\x1d"
	fieldSep  = "\x1f"
)

// logFormat emits one record per commit:
//
//	RS hash US author US email US date US subject US body GS
//
// followed by the commit's numstat lines.
const logFormat = "%x1e%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1f%b%x1d"

// Git implements LogReader and tagging operations using the git CLI.
type Git struct {
	// gitPath is the path to the git executable
	gitPath string
}

// NewGit creates a new Git instance.
// It verifies that git is available on the system.
func NewGit(ctx context.Context) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	// Verify git works
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}

	return &Git{gitPath: gitPath}, nil
}

// IsRepo reports whether repoPath is inside a git work tree.
func (g *Git) IsRepo(ctx context.Context, repoPath string) bool {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// RepoRoot returns the absolute path of the repository root.
func (g *Git) RepoRoot(ctx context.Context, repoPath string) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed in %s: %w", repoPath, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Log returns the commits reachable from toRef but not fromRef, newest
// first, with per-commit line-change totals. An empty fromRef means all
// history up to toRef. A fromRef that does not resolve is treated as
// absent rather than failing the whole range.
func (g *Git) Log(ctx context.Context, repoPath, fromRef, toRef string) ([]Commit, error) {
	if toRef == "" {
		toRef = "HEAD"
	}

	rangeSpec := toRef
	if fromRef != "" && g.refExists(ctx, repoPath, fromRef) {
		rangeSpec = fromRef + ".." + toRef
	}

	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath,
		"log", rangeSpec, "--pretty=format:"+logFormat, "--numstat")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log failed for %s in %s: %w", rangeSpec, repoPath, err)
	}

	return parseLog(string(output))
}

// ChangedFiles returns the paths changed in fromRef..toRef. When fromRef
// is empty it returns the working-tree changes against HEAD instead.
func (g *Git) ChangedFiles(ctx context.Context, repoPath, fromRef, toRef string) ([]string, error) {
	var args []string
	if fromRef == "" {
		args = []string{"-C", repoPath, "diff", "--name-only", "HEAD"}
	} else {
		if toRef == "" {
			toRef = "HEAD"
		}
		args = []string{"-C", repoPath, "diff", "--name-only", fromRef + ".." + toRef}
	}

	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed in %s: %w", repoPath, err)
	}

	var files []string
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			files = append(files, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse git diff output: %w", err)
	}
	return files, nil
}

// LatestTag returns the most recent tag reachable from HEAD, or an empty
// string when the repository has no tags.
func (g *Git) LatestTag(ctx context.Context, repoPath string) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "describe", "--tags", "--abbrev=0")
	output, err := cmd.Output()
	if err != nil {
		// No tags exist
		return "", nil
	}
	return strings.TrimSpace(string(output)), nil
}

// ListTags returns tags matching prefix*, sorted by version descending.
func (g *Git) ListTags(ctx context.Context, repoPath, prefix string) ([]string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath,
		"tag", "-l", prefix+"*", "--sort=-version:refname")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git tag failed in %s: %w", repoPath, err)
	}

	var tags []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

// CreateTag creates an annotated tag at HEAD.
func (g *Git) CreateTag(ctx context.Context, repoPath, name, message string) error {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "tag", "-a", name, "-m", message)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git tag %s failed in %s: %w (%s)", name, repoPath, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// PushTag pushes a tag to origin.
func (g *Git) PushTag(ctx context.Context, repoPath, name string) error {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "push", "origin", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git push origin %s failed in %s: %w (%s)", name, repoPath, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// CurrentCommitHash returns the full hash of HEAD.
func (g *Git) CurrentCommitHash(ctx context.Context, repoPath string) (string, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash in %s: %w", repoPath, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// refExists checks whether a ref resolves to a commit.
func (g *Git) refExists(ctx context.Context, repoPath, ref string) bool {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return cmd.Run() == nil
}

// parseLog parses the output of git log with logFormat and --numstat.
func parseLog(output string) ([]Commit, error) {
	var commits []Commit

	for _, record := range strings.Split(output, recordSep) {
		if strings.TrimSpace(record) == "" {
			continue
		}

		header, stats, _ := strings.Cut(record, groupSep)
		fields := strings.Split(header, fieldSep)
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed log record: %d fields", len(fields))
		}

		ts, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit date %q: %w", fields[3], err)
		}

		commit := Commit{
			Hash:      strings.TrimSpace(fields[0]),
			Author:    fields[1],
			Email:     fields[2],
			Timestamp: ts,
			Subject:   strings.TrimSpace(fields[4]),
			Body:      strings.TrimSpace(strings.Join(fields[5:], fieldSep)),
		}

		scanner := bufio.NewScanner(strings.NewReader(stats))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			parts := strings.SplitN(line, "\t", 3)
			if len(parts) != 3 {
				continue
			}
			// Binary files report "-" for both counts.
			if ins, err := strconv.Atoi(parts[0]); err == nil {
				commit.Insertions += ins
			}
			if del, err := strconv.Atoi(parts[1]); err == nil {
				commit.Deletions += del
			}
			commit.FilesChanged++
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to parse numstat: %w", err)
		}

		commits = append(commits, commit)
	}

	return commits, nil
}
