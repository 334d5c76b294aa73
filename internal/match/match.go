// Package match scores changed files against error-report stacktraces.
//
// Scores come from a fixed ordinal table rather than a learned model: a
// candidate is only ever one of the listed confidence levels, so output is
// reproducible and thresholds are meaningful. Matching is stateless; every
// invocation over the same inputs yields the same candidates in the same
// order.
package match

import (
	"path"
	"sort"
	"strings"

	"github.com/redgit/redgit/internal/integrations"
)

// Confidence levels, strongest first. A pair that matches several rules
// gets the strongest one.
const (
	// ConfidenceExactLocation: the file is the error's reported crash
	// location.
	ConfidenceExactLocation = 1.00

	// ConfidenceVerbatim: the file path appears verbatim inside a
	// stacktrace frame path.
	ConfidenceVerbatim = 0.95

	// ConfidenceFramePath: the normalized file path equals a normalized
	// frame path.
	ConfidenceFramePath = 0.90

	// ConfidenceFrameBasename: the basename equals a frame's basename but
	// the directories differ.
	ConfidenceFrameBasename = 0.80

	// ConfidenceBasename: the basename appears somewhere in the
	// stacktrace text.
	ConfidenceBasename = 0.60
)

// DefaultMinConfidence is the candidate floor when none is configured.
const DefaultMinConfidence = 0.5

// Type tags the rule that produced a candidate's confidence.
type Type string

const (
	TypeExactLocation Type = "exact-location"
	TypeVerbatim      Type = "verbatim"
	TypeFramePath     Type = "frame-path"
	TypeFrameBasename Type = "frame-basename"
	TypeBasename      Type = "basename"
	TypeNone          Type = ""
)

// Candidate is one (changed file, error report) pair above the confidence
// floor. Candidates are transient per invocation, never persisted.
type Candidate struct {
	// File is the changed file path as given.
	File string

	// ErrorID is the matched report's identifier.
	ErrorID string

	// ErrorTitle is carried along for display.
	ErrorTitle string

	// Confidence is one of the fixed levels above.
	Confidence float64

	// MatchType tags the rule that fired.
	MatchType Type
}

// Score rates one changed file against one error report. It returns 0 and
// TypeNone when nothing matches; otherwise the confidence is exactly one
// of the fixed levels.
func Score(file string, report *integrations.ErrorReport) (float64, Type) {
	if file == "" {
		return 0, TypeNone
	}

	if report.Location != "" && file == report.Location {
		return ConfidenceExactLocation, TypeExactLocation
	}

	frames := report.FramePaths()

	for _, frame := range frames {
		if strings.Contains(frame, file) {
			return ConfidenceVerbatim, TypeVerbatim
		}
	}

	normalized := normalizePath(file)
	for _, frame := range frames {
		if normalizePath(frame) == normalized {
			return ConfidenceFramePath, TypeFramePath
		}
	}

	base := path.Base(normalized)
	for _, frame := range frames {
		if path.Base(normalizePath(frame)) == base {
			return ConfidenceFrameBasename, TypeFrameBasename
		}
	}

	for _, frame := range frames {
		if strings.Contains(strings.ToLower(frame), base) {
			return ConfidenceBasename, TypeBasename
		}
	}

	return 0, TypeNone
}

// Match scores every changed file against every report and returns the
// candidates at or above minConfidence, ordered by descending confidence
// with lexical file-path then error-ID tie-breaks. A minConfidence of 0
// still excludes non-matches, since they score 0 and carry no match type.
func Match(changedFiles []string, reports []integrations.ErrorReport, minConfidence float64) []Candidate {
	var candidates []Candidate

	for _, file := range changedFiles {
		for i := range reports {
			score, matchType := Score(file, &reports[i])
			if matchType == TypeNone || score < minConfidence {
				continue
			}
			candidates = append(candidates, Candidate{
				File:       file,
				ErrorID:    reports[i].ID,
				ErrorTitle: reports[i].Title,
				Confidence: score,
				MatchType:  matchType,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].File != candidates[j].File {
			return candidates[i].File < candidates[j].File
		}
		return candidates[i].ErrorID < candidates[j].ErrorID
	})

	return candidates
}

// normalizePath folds path separators, relative prefixes and case so
// tracker-reported paths compare against repo paths.
func normalizePath(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}
