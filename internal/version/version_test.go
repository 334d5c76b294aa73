package version

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redgit/redgit/internal/config"
)

type fakeTagger struct {
	latest  string
	tags    []string
	created []string
	pushed  []string
}

func (f *fakeTagger) LatestTag(ctx context.Context, repoPath string) (string, error) {
	return f.latest, nil
}

func (f *fakeTagger) ListTags(ctx context.Context, repoPath, prefix string) ([]string, error) {
	return f.tags, nil
}

func (f *fakeTagger) CreateTag(ctx context.Context, repoPath, name, message string) error {
	f.created = append(f.created, name)
	return nil
}

func (f *fakeTagger) PushTag(ctx context.Context, repoPath, name string) error {
	f.pushed = append(f.pushed, name)
	return nil
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"patch", LevelPatch, false},
		{"minor", LevelMinor, false},
		{"major", LevelMajor, false},
		{"MAJOR", LevelMajor, false},
		{"huge", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBump(t *testing.T) {
	current := semver.MustParse("1.2.3")

	assert.Equal(t, "1.2.4", Bump(current, LevelPatch).String())
	assert.Equal(t, "1.3.0", Bump(current, LevelMinor).String())
	assert.Equal(t, "2.0.0", Bump(current, LevelMajor).String())
}

func TestCurrentFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Version.Current = "2.1.0"
	m := NewManager(cfg, t.TempDir(), nil)

	v, err := m.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "2.1.0", v.String())
}

func TestCurrentFromLatestTag(t *testing.T) {
	cfg := config.Default()
	m := NewManager(cfg, t.TempDir(), &fakeTagger{latest: "v1.4.2"})

	v, err := m.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "1.4.2", v.String())
}

func TestCurrentUninitialized(t *testing.T) {
	cfg := config.Default()

	t.Run("no tags", func(t *testing.T) {
		m := NewManager(cfg, t.TempDir(), &fakeTagger{})
		v, err := m.Current(context.Background())
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("non-semver tag", func(t *testing.T) {
		m := NewManager(cfg, t.TempDir(), &fakeTagger{latest: "nightly-2024-01-01"})
		v, err := m.Current(context.Background())
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}

func TestCurrentInvalidConfigVersion(t *testing.T) {
	cfg := config.Default()
	cfg.Version.Current = "not-a-version"
	m := NewManager(cfg, t.TempDir(), nil)

	_, err := m.Current(context.Background())
	assert.Error(t, err)
}

func TestTagNameAndCreate(t *testing.T) {
	cfg := config.Default()
	cfg.Version.TagPrefix = "v"
	tagger := &fakeTagger{}
	m := NewManager(cfg, t.TempDir(), tagger)

	v := semver.MustParse("1.0.0")
	assert.Equal(t, "v1.0.0", m.TagName(v))

	name, err := m.CreateTag(context.Background(), v, true)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", name)
	assert.Equal(t, []string{"v1.0.0"}, tagger.created)
	assert.Equal(t, []string{"v1.0.0"}, tagger.pushed)
}

func TestListTags(t *testing.T) {
	cfg := config.Default()
	cfg.Version.TagPrefix = "v"
	m := NewManager(cfg, t.TempDir(), &fakeTagger{tags: []string{"v2.0.0", "v1.0.0"}})

	infos, err := m.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "2.0.0", infos[0].Version)
	assert.Equal(t, "v2.0.0", infos[0].Tag)
}

func TestVersionFilesAndUpdate(t *testing.T) {
	root := t.TempDir()
	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}
	writeFile("package.json", "{\n  \"name\": \"demo\",\n  \"version\": \"1.2.3\"\n}\n")
	writeFile("pyproject.toml", "[project]\nname = \"demo\"\nversion = \"1.2.3\"\n")
	writeFile("VERSION", "1.2.3\n")
	writeFile("Cargo.toml", "[package]\nversion = \"9.9.9\"\n")

	cfg := config.Default()
	m := NewManager(cfg, root, nil)

	// Lexical order, so repeated runs list files identically.
	files := m.VersionFiles()
	assert.Equal(t, []string{"Cargo.toml", "VERSION", "package.json", "pyproject.toml"}, files)

	updated, err := m.UpdateFiles(semver.MustParse("1.2.3"), semver.MustParse("1.3.0"))
	require.NoError(t, err)
	// Cargo.toml declares a different version and is left alone
	assert.Equal(t, []string{"VERSION", "package.json", "pyproject.toml"}, updated)

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"version\": \"1.3.0\"")

	data, err = os.ReadFile(filepath.Join(root, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "9.9.9")
}

func TestSetCurrentPersists(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	m := NewManager(cfg, root, nil)

	require.NoError(t, m.SetCurrent(semver.MustParse("0.2.0")))
	assert.Equal(t, "0.2.0", cfg.Version.Current)

	loaded, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", loaded.Version.Current)
}
