package changelog

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown produces the per-version changelog document. The layout
// (headers, emoji sections, contributor bars) is presentation only; the
// grouped entries and stats carry the contract.
func RenderMarkdown(version string, grouped map[string][]Entry, fromRef, summary string, stats []ContributorStat, now time.Time) string {
	var b strings.Builder

	total := 0
	for _, entries := range grouped {
		total += len(entries)
	}

	fmt.Fprintf(&b, "# %s\n\n", version)
	fmt.Fprintf(&b, "**Release Date:** %s\n", now.Format("2006-01-02"))
	if fromRef != "" {
		fmt.Fprintf(&b, "**Previous Version:** %s\n", fromRef)
	}
	fmt.Fprintf(&b, "**Total Commits:** %d\n\n", total)

	if summary != "" {
		b.WriteString("---\n\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	b.WriteString("---\n\n## Commit Details\n\n")

	for _, typ := range TypeOrder {
		entries, ok := grouped[typ]
		if !ok || len(entries) == 0 {
			continue
		}

		display := TypeDisplay[typ]
		fmt.Fprintf(&b, "### %s %s (%d)\n\n", display.Emoji, display.Name, len(entries))

		for _, e := range entries {
			if e.Scope != "" {
				fmt.Fprintf(&b, "- **%s:** %s (`%s`)\n", e.Scope, e.Description, e.Commit.ShortHash())
			} else {
				fmt.Fprintf(&b, "- %s (`%s`)\n", e.Description, e.Commit.ShortHash())
			}
		}
		b.WriteString("\n")
	}

	if len(stats) > 0 {
		b.WriteString("---\n\n## Contributors\n\n")
		for _, stat := range stats {
			fmt.Fprintf(&b, "- **%s**: %d commits (%.1f%%) `%s`\n",
				stat.Name, stat.Commits, stat.Percentage, contributorBar(stat.Percentage))
			fmt.Fprintf(&b, "  - +%d / -%d lines\n", stat.Additions, stat.Deletions)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// contributorBar renders a 20-character bar chart for a percentage share.
func contributorBar(percentage float64) string {
	filled := int(percentage / 5)
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// MergeIntoMain prepends a version's content into an aggregate changelog,
// keeping the "# Changelog" header at the top. existing is the current
// CHANGELOG.md content, empty when the file does not exist yet.
func MergeIntoMain(existing, versionContent string) string {
	if existing == "" {
		return "# Changelog\n\n" + versionContent + "\n"
	}

	if strings.HasPrefix(existing, "# Changelog") {
		parts := strings.SplitN(existing, "\n", 2)
		rest := ""
		if len(parts) == 2 {
			rest = parts[1]
		}
		return parts[0] + "\n\n" + versionContent + "\n\n---\n" + rest
	}

	return "# Changelog\n\n" + versionContent + "\n\n---\n\n" + existing
}
