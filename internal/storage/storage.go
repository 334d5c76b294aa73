// Package storage persists release history in a SQLite database under the
// repository's .redgit directory.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
-- Releases table (one row per generated changelog)
CREATE TABLE IF NOT EXISTS releases (
    id TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    from_ref TEXT NOT NULL DEFAULT '',
    generated_at DATETIME NOT NULL,
    commit_count INTEGER NOT NULL DEFAULT 0,
    contributor_count INTEGER NOT NULL DEFAULT 0,
    file_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_releases_version ON releases(version);
CREATE INDEX IF NOT EXISTS idx_releases_generated_at ON releases(generated_at);
`

// Release is one recorded changelog generation.
type Release struct {
	ID               string
	Version          string
	FromRef          string
	GeneratedAt      time.Time
	CommitCount      int
	ContributorCount int
	FilePath         string
}

// Store holds release history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the release database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// WAL mode for concurrent readers during long generations
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRelease inserts a release record. A missing ID or timestamp is
// filled in.
func (s *Store) RecordRelease(ctx context.Context, release *Release) error {
	if release.Version == "" {
		return fmt.Errorf("release version is required")
	}
	if release.ID == "" {
		release.ID = uuid.NewString()
	}
	if release.GeneratedAt.IsZero() {
		release.GeneratedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (id, version, from_ref, generated_at, commit_count, contributor_count, file_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		release.ID,
		release.Version,
		release.FromRef,
		release.GeneratedAt,
		release.CommitCount,
		release.ContributorCount,
		release.FilePath,
	)
	if err != nil {
		return fmt.Errorf("failed to record release %s: %w", release.Version, err)
	}
	return nil
}

// ListReleases returns all recorded releases, newest first.
func (s *Store) ListReleases(ctx context.Context) ([]*Release, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, from_ref, generated_at, commit_count, contributor_count, file_path
		FROM releases
		ORDER BY generated_at DESC, version DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var releases []*Release
	for rows.Next() {
		release := &Release{}
		if err := rows.Scan(
			&release.ID,
			&release.Version,
			&release.FromRef,
			&release.GeneratedAt,
			&release.CommitCount,
			&release.ContributorCount,
			&release.FilePath,
		); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating release rows: %w", err)
	}
	return releases, nil
}

// GetRelease returns the most recent record for a version, or nil when the
// version was never recorded.
func (s *Store) GetRelease(ctx context.Context, version string) (*Release, error) {
	release := &Release{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, version, from_ref, generated_at, commit_count, contributor_count, file_path
		FROM releases
		WHERE version = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`, version).Scan(
		&release.ID,
		&release.Version,
		&release.FromRef,
		&release.GeneratedAt,
		&release.CommitCount,
		&release.ContributorCount,
		&release.FilePath,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query release %s: %w", version, err)
	}
	return release, nil
}
