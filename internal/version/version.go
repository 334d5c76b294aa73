// Package version manages the project's semantic version: reading it from
// config or git tags, bumping it, and rewriting it in well-known project
// files.
package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/redgit/redgit/internal/config"
	"github.com/redgit/redgit/internal/logger"
)

// Level is a semantic bump level.
type Level string

const (
	LevelPatch Level = "patch"
	LevelMinor Level = "minor"
	LevelMajor Level = "major"
)

// ParseLevel validates a user-supplied bump level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelPatch:
		return LevelPatch, nil
	case LevelMinor:
		return LevelMinor, nil
	case LevelMajor:
		return LevelMajor, nil
	}
	return "", fmt.Errorf("invalid bump level %q (use patch, minor, or major)", s)
}

// Tagger is the subset of git operations the version manager needs.
type Tagger interface {
	LatestTag(ctx context.Context, repoPath string) (string, error)
	ListTags(ctx context.Context, repoPath, prefix string) ([]string, error)
	CreateTag(ctx context.Context, repoPath, name, message string) error
	PushTag(ctx context.Context, repoPath, name string) error
}

// Manager reads and writes the project version.
type Manager struct {
	cfg      *config.Config
	repoRoot string
	tagger   Tagger
}

// NewManager creates a version Manager. tagger may be nil when tag
// operations are not needed.
func NewManager(cfg *config.Config, repoRoot string, tagger Tagger) *Manager {
	return &Manager{cfg: cfg, repoRoot: repoRoot, tagger: tagger}
}

// Current returns the current version. Config takes precedence; when unset
// the latest version tag is used. Returns nil when no version exists yet.
func (m *Manager) Current(ctx context.Context) (*semver.Version, error) {
	if m.cfg.Version.Current != "" {
		v, err := semver.NewVersion(m.cfg.Version.Current)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q in config: %w", m.cfg.Version.Current, err)
		}
		return v, nil
	}

	if m.tagger == nil {
		return nil, nil
	}
	tag, err := m.tagger.LatestTag(ctx, m.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest tag: %w", err)
	}
	if tag == "" {
		return nil, nil
	}

	raw := strings.TrimPrefix(tag, m.cfg.Version.TagPrefix)
	v, err := semver.NewVersion(raw)
	if err != nil {
		// Latest tag is not a version tag. Treat as uninitialized.
		logger.Debug("latest tag is not semver", "tag", tag)
		return nil, nil
	}
	return v, nil
}

// Bump returns current raised by level.
func Bump(current *semver.Version, level Level) *semver.Version {
	var next semver.Version
	switch level {
	case LevelMajor:
		next = current.IncMajor()
	case LevelMinor:
		next = current.IncMinor()
	default:
		next = current.IncPatch()
	}
	return &next
}

// TagName returns the git tag name for a version, honoring the configured
// prefix.
func (m *Manager) TagName(v *semver.Version) string {
	return m.cfg.Version.TagPrefix + v.String()
}

// SetCurrent stores the version in the config and saves it.
func (m *Manager) SetCurrent(v *semver.Version) error {
	m.cfg.Version.Current = v.String()
	if err := m.cfg.Save(m.repoRoot); err != nil {
		return fmt.Errorf("failed to save version to config: %w", err)
	}
	return nil
}

// CreateTag creates an annotated release tag for v, optionally pushing it.
func (m *Manager) CreateTag(ctx context.Context, v *semver.Version, push bool) (string, error) {
	if m.tagger == nil {
		return "", fmt.Errorf("git is not available")
	}
	name := m.TagName(v)
	if err := m.tagger.CreateTag(ctx, m.repoRoot, name, fmt.Sprintf("Release %s", v)); err != nil {
		return "", err
	}
	if push {
		if err := m.tagger.PushTag(ctx, m.repoRoot, name); err != nil {
			return name, err
		}
	}
	return name, nil
}

// ListTags returns all version tags, newest first, with the prefix
// stripped from the returned versions.
func (m *Manager) ListTags(ctx context.Context) ([]TagInfo, error) {
	if m.tagger == nil {
		return nil, fmt.Errorf("git is not available")
	}
	tags, err := m.tagger.ListTags(ctx, m.repoRoot, m.cfg.Version.TagPrefix)
	if err != nil {
		return nil, err
	}

	infos := make([]TagInfo, 0, len(tags))
	for _, tag := range tags {
		infos = append(infos, TagInfo{
			Tag:     tag,
			Version: strings.TrimPrefix(tag, m.cfg.Version.TagPrefix),
		})
	}
	return infos, nil
}

// TagInfo pairs a git tag with its version string.
type TagInfo struct {
	Tag     string
	Version string
}

// versionFilePatterns maps well-known project files to the regex that
// locates their version declaration. The first capture group is kept, the
// second is the version to replace.
var versionFilePatterns = map[string]*regexp.Regexp{
	"package.json":   regexp.MustCompile(`("version"\s*:\s*")([0-9]+\.[0-9]+\.[0-9][^"]*)(")`),
	"pyproject.toml": regexp.MustCompile(`(?m)(^version\s*=\s*")([0-9]+\.[0-9]+\.[0-9][^"]*)(")`),
	"Cargo.toml":     regexp.MustCompile(`(?m)(^version\s*=\s*")([0-9]+\.[0-9]+\.[0-9][^"]*)(")`),
	"setup.py":       regexp.MustCompile(`(version\s*=\s*["'])([0-9]+\.[0-9]+\.[0-9][^"']*)(["'])`),
	"VERSION":        regexp.MustCompile(`(\A\s*)([0-9]+\.[0-9]+\.[0-9]\S*)(\s*)`),
}

// versionFileNames returns the pattern map's keys sorted, so callers
// visit files in a deterministic order.
func versionFileNames() []string {
	names := make([]string, 0, len(versionFilePatterns))
	for name := range versionFilePatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VersionFiles returns the project files under the repo root that carry a
// version declaration.
func (m *Manager) VersionFiles() []string {
	var files []string
	for _, name := range versionFileNames() {
		path := filepath.Join(m.repoRoot, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if versionFilePatterns[name].Match(data) {
			files = append(files, name)
		}
	}
	return files
}

// UpdateFiles rewrites the version declaration in every detected project
// file from old to next and returns the files changed. Files whose
// declared version differs from old are left alone.
func (m *Manager) UpdateFiles(old, next *semver.Version) ([]string, error) {
	var updated []string
	for _, name := range versionFileNames() {
		pattern := versionFilePatterns[name]
		path := filepath.Join(m.repoRoot, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		match := pattern.FindSubmatch(data)
		if match == nil || string(match[2]) != old.String() {
			continue
		}

		replaced := pattern.ReplaceAll(data, []byte("${1}"+next.String()+"${3}"))
		if err := os.WriteFile(path, replaced, 0644); err != nil {
			return updated, fmt.Errorf("failed to update %s: %w", name, err)
		}
		updated = append(updated, name)
	}
	return updated, nil
}
