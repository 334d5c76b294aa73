package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/redgit/redgit/internal/git"
)

func testGrouped() map[string][]Entry {
	return GroupByType([]git.Commit{
		{Hash: "abc1234def", Subject: "feat(auth): add login"},
		{Hash: "def5678abc", Subject: "fix: handle nil session"},
		{Hash: "aaa1111bbb", Subject: "update readme wording"},
	})
}

func TestRenderMarkdown(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := []ContributorStat{
		{Name: "Alice", Commits: 2, Additions: 10, Deletions: 3, Percentage: 66.7},
		{Name: "Bob", Commits: 1, Additions: 1, Deletions: 0, Percentage: 33.3},
	}

	content := RenderMarkdown("1.2.0", testGrouped(), "v1.1.0", "The release theme.", stats, now)

	assert.True(t, strings.HasPrefix(content, "# 1.2.0\n"))
	assert.Contains(t, content, "**Release Date:** 2024-03-01")
	assert.Contains(t, content, "**Previous Version:** v1.1.0")
	assert.Contains(t, content, "**Total Commits:** 3")
	assert.Contains(t, content, "The release theme.")
	assert.Contains(t, content, "### ✨ Features (1)")
	assert.Contains(t, content, "- **auth:** add login (`abc1234`)")
	assert.Contains(t, content, "### 🐛 Bug Fixes (1)")
	assert.Contains(t, content, "### 📝 Other Changes (1)")
	assert.Contains(t, content, "- **Alice**: 2 commits (66.7%)")
	assert.Contains(t, content, "+10 / -3 lines")

	// Sections come out in TypeOrder.
	featIdx := strings.Index(content, "Features")
	fixIdx := strings.Index(content, "Bug Fixes")
	otherIdx := strings.Index(content, "Other Changes")
	assert.Less(t, featIdx, fixIdx)
	assert.Less(t, fixIdx, otherIdx)
}

func TestRenderMarkdownEmptyRange(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	content := RenderMarkdown("1.0.0", map[string][]Entry{}, "", "", nil, now)

	assert.Contains(t, content, "**Total Commits:** 0")
	assert.NotContains(t, content, "Previous Version")
	assert.NotContains(t, content, "Contributors")
}

func TestContributorBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 20), contributorBar(100))
	assert.Equal(t, strings.Repeat("░", 20), contributorBar(0))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), contributorBar(50))
}

func TestMergeIntoMainNewFile(t *testing.T) {
	out := MergeIntoMain("", "# 1.0.0\n\ncontent")
	assert.True(t, strings.HasPrefix(out, "# Changelog\n\n# 1.0.0"))
}

func TestMergeIntoMainPrependsNewest(t *testing.T) {
	existing := MergeIntoMain("", "# 1.0.0\n\nold release")
	out := MergeIntoMain(existing, "# 1.1.0\n\nnew release")

	assert.True(t, strings.HasPrefix(out, "# Changelog"))
	newIdx := strings.Index(out, "# 1.1.0")
	oldIdx := strings.Index(out, "# 1.0.0")
	assert.Greater(t, oldIdx, newIdx, "newest version must come first")
}

func TestMergeIntoMainForeignHeader(t *testing.T) {
	out := MergeIntoMain("some pre-existing notes", "# 1.0.0\n\ncontent")
	assert.True(t, strings.HasPrefix(out, "# Changelog"))
	assert.Contains(t, out, "some pre-existing notes")
}

func TestVersionFileName(t *testing.T) {
	assert.Equal(t, "v1.2.3.md", VersionFileName("1.2.3"))
	assert.Equal(t, "v1.2.3.md", VersionFileName("v1.2.3"))
}
