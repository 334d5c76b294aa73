package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redgit/redgit/internal/git"
)

func TestDeduplicateMergeAndDuplicates(t *testing.T) {
	commits := []git.Commit{
		{Hash: "aaa0001", Subject: "Merge branch 'x'"},
		{Hash: "abc1230", Subject: "feat: add login"},
		{Hash: "def4560", Subject: "feat: add login"},
	}

	unique, removed := Deduplicate(commits)

	require.Len(t, unique, 1)
	assert.Equal(t, "abc1230", unique[0].Hash)

	require.Len(t, removed, 2)
	assert.Equal(t, RemovedMerge, removed[0].Reason)
	assert.Equal(t, "aaa0001", removed[0].Commit.Hash)
	assert.Equal(t, RemovedDuplicate, removed[1].Reason)
	assert.Equal(t, "abc1230", removed[1].DuplicateOf)

	grouped := GroupByType(unique)
	require.Len(t, grouped["feat"], 1)
}

func TestDeduplicateNormalizedVariants(t *testing.T) {
	// Same logical change with different punctuation, casing and issue refs.
	commits := []git.Commit{
		{Hash: "c1", Subject: "fix: Handle Nil Session (#12)"},
		{Hash: "c2", Subject: "fix: handle nil session."},
		{Hash: "c3", Subject: "fix: handle nil session [#99]"},
	}

	unique, removed := Deduplicate(commits)

	require.Len(t, unique, 1)
	assert.Equal(t, "c1", unique[0].Hash)
	require.Len(t, removed, 2)
	for _, r := range removed {
		assert.Equal(t, RemovedDuplicate, r.Reason)
		assert.Equal(t, "c1", r.DuplicateOf)
	}
}

// Every input commit must land exactly once: in unique or in removed.
func TestDeduplicatePartitionsInput(t *testing.T) {
	commits := []git.Commit{
		{Hash: "h1", Subject: "feat: one"},
		{Hash: "h2", Subject: "Merge pull request #3 from org/branch"},
		{Hash: "h3", Subject: "feat: one"},
		{Hash: "h4", Subject: "fix: two"},
		{Hash: "h5", Subject: "random message"},
		{Hash: "h6", Subject: "Merge branch 'y'"},
		{Hash: "h7", Subject: "random message!"},
	}

	unique, removed := Deduplicate(commits)

	seen := make(map[string]int)
	for _, c := range unique {
		seen[c.Hash]++
	}
	for _, r := range removed {
		seen[r.Commit.Hash]++
	}

	require.Len(t, seen, len(commits))
	for _, c := range commits {
		assert.Equal(t, 1, seen[c.Hash], "commit %s must appear exactly once", c.Hash)
	}
}

func TestDeduplicateEmpty(t *testing.T) {
	unique, removed := Deduplicate(nil)
	assert.Empty(t, unique)
	assert.Empty(t, removed)
}
