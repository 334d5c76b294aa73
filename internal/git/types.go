package git

import (
	"context"
	"time"
)

// Commit is one commit read from version-control history.
// It is immutable once read; the changelog engine derives entries from it.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// Author is the commit author's name.
	Author string

	// Email is the commit author's email.
	Email string

	// Subject is the first line of the commit message.
	Subject string

	// Body is the rest of the commit message, if any.
	Body string

	// Timestamp is the author date.
	Timestamp time.Time

	// Insertions and Deletions are line-change totals across the commit.
	Insertions int
	Deletions  int

	// FilesChanged is the number of files touched by the commit.
	FilesChanged int
}

// ShortHash returns the abbreviated hash used in changelog output.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// LogReader produces ordered commit sequences for a ref range.
// This interface is implementation-agnostic to allow mock implementations
// in tests.
type LogReader interface {
	// Log returns commits in fromRef..toRef order (newest first).
	// An empty fromRef means all history up to toRef.
	Log(ctx context.Context, repoPath, fromRef, toRef string) ([]Commit, error)

	// ChangedFiles returns the paths changed in fromRef..toRef, or the
	// working-tree changes against HEAD when fromRef is empty.
	ChangedFiles(ctx context.Context, repoPath, fromRef, toRef string) ([]string, error)
}
