package changelog

import (
	"regexp"
	"strings"

	"github.com/redgit/redgit/internal/git"
)

// conventionalRe matches "type(scope): description" and "type: description".
var conventionalRe = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?\s*:\s*(.+)$`)

// issueRefRe matches trailing issue references like (#123), [#123] or (123).
var issueRefRe = regexp.MustCompile(`\s*[(\[]#?\d+[)\]]`)

// trailingPunctRe matches trailing sentence punctuation.
var trailingPunctRe = regexp.MustCompile(`[.!?]+$`)

// mergeMarkers are the commit-subject prefixes that identify merge commits.
// Matching is case-insensitive.
var mergeMarkers = []string{
	"merge branch",
	"merge pull request",
	"merge remote-tracking branch",
	"merge tag",
}

// Classify parses a commit subject into a changelog entry. Subjects without
// a recognized conventional-commit type land in the "other" bucket with the
// full subject as description; malformed messages never fail.
func Classify(c git.Commit) Entry {
	m := conventionalRe.FindStringSubmatch(c.Subject)
	if m != nil {
		typ := strings.ToLower(m[1])
		if _, known := TypeDisplay[typ]; known {
			return Entry{
				Type:        typ,
				Scope:       m[2],
				Description: strings.TrimSpace(m[3]),
				Commit:      c,
			}
		}
	}

	return Entry{
		Type:        TypeOther,
		Description: strings.TrimSpace(c.Subject),
		Commit:      c,
	}
}

// IsMerge reports whether a commit subject carries a merge marker.
func IsMerge(subject string) bool {
	lower := strings.ToLower(strings.TrimSpace(subject))
	for _, marker := range mergeMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// Normalize reduces a commit description to its deduplication key:
// case-folded, issue references removed, trailing punctuation stripped.
// Two commits with equal normalized descriptions are the same logical
// change.
func Normalize(description string) string {
	msg := strings.ToLower(strings.TrimSpace(description))
	msg = issueRefRe.ReplaceAllString(msg, "")
	msg = trailingPunctRe.ReplaceAllString(msg, "")
	return strings.TrimSpace(msg)
}

// GroupByType classifies commits and groups the entries by type. Iterate
// with TypeOrder for deterministic section ordering.
func GroupByType(commits []git.Commit) map[string][]Entry {
	grouped := make(map[string][]Entry)
	for _, c := range commits {
		e := Classify(c)
		grouped[e.Type] = append(grouped[e.Type], e)
	}
	return grouped
}
