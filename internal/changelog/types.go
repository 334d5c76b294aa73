package changelog

import (
	"github.com/redgit/redgit/internal/git"
)

// Entry is one changelog line derived from a commit message.
type Entry struct {
	// Type is the conventional-commit type ("feat", "fix", ...), or
	// TypeOther when the message has no recognized prefix.
	Type string

	// Scope is the optional parenthesized scope, empty if absent.
	Scope string

	// Description is the message with type/scope prefix stripped.
	Description string

	// Commit is the originating commit.
	Commit git.Commit
}

// TypeOther is the bucket for commits without a recognized type prefix.
const TypeOther = "other"

// TypeOrder is the display order for changelog sections.
var TypeOrder = []string{
	"feat", "fix", "perf", "refactor", "docs", "test",
	"chore", "style", "ci", "build", TypeOther,
}

// TypeDisplay maps a type to its section heading and emoji tag.
var TypeDisplay = map[string]struct {
	Name  string
	Emoji string
}{
	"feat":     {"Features", "✨"},
	"fix":      {"Bug Fixes", "🐛"},
	"perf":     {"Performance", "⚡"},
	"refactor": {"Refactoring", "♻️"},
	"docs":     {"Documentation", "📚"},
	"test":     {"Tests", "🧪"},
	"chore":    {"Chores", "🔧"},
	"style":    {"Styles", "💄"},
	"ci":       {"CI/CD", "👷"},
	"build":    {"Build", "📦"},
	TypeOther:  {"Other Changes", "📝"},
}

// RemovalReason explains why a commit was excluded from the changelog.
type RemovalReason string

const (
	// RemovedMerge marks merge commits.
	RemovedMerge RemovalReason = "merge"

	// RemovedDuplicate marks commits whose normalized message matched an
	// earlier commit in the range.
	RemovedDuplicate RemovalReason = "duplicate"
)

// Removed records one commit dropped by deduplication.
type Removed struct {
	Commit git.Commit
	Reason RemovalReason

	// DuplicateOf is the hash of the kept commit, set for RemovedDuplicate.
	DuplicateOf string
}

// ContributorStat aggregates one author's contribution over a version range.
type ContributorStat struct {
	Name      string
	Email     string
	Commits   int
	Additions int
	Deletions int

	// Percentage is this author's share of total commits, rounded to one
	// decimal. Shares across all authors sum to 100 within rounding.
	Percentage float64
}

// Document is the result of generating a changelog for one version.
type Document struct {
	// Version is the released version (no tag prefix).
	Version string

	// FromRef is the lower bound of the range, empty for all history.
	FromRef string

	// Content is the rendered markdown.
	Content string

	// VersionFile is the path of the per-version file written.
	VersionFile string

	// MainFile is the path of the aggregate CHANGELOG.md, empty if not
	// updated.
	MainFile string

	// Entries are the grouped changelog entries keyed by type.
	Entries map[string][]Entry

	// Removed lists the merge/duplicate commits excluded from Entries.
	Removed []Removed

	// Stats are the per-author contribution statistics.
	Stats []ContributorStat

	// Summary is the AI-generated release summary, empty when skipped.
	Summary string
}

// CommitCount returns the number of commits that survived deduplication.
func (d *Document) CommitCount() int {
	n := 0
	for _, entries := range d.Entries {
		n += len(entries)
	}
	return n
}
