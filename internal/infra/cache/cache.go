package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"metascrub/internal/domain/model"
)

// Cache stores inspection summaries keyed by path, size and modification
// time, so unchanged files are not inspected again.
type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	path TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	has_gps INTEGER NOT NULL,
	has_author INTEGER NOT NULL,
	has_ai INTEGER NOT NULL,
	inspected_at INTEGER NOT NULL
);
`

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init cache db: %w", err)
		}
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached summary for f if its size and mtime still match.
func (c *Cache) Get(ctx context.Context, f model.MediaFile) (model.MetadataSummary, bool) {
	var s model.MetadataSummary
	err := c.db.QueryRowContext(ctx, `
		SELECT has_gps, has_author, has_ai FROM summaries
		WHERE path = ? AND size = ? AND mod_time = ?
	`, f.Path, f.SizeBytes, f.LastModified.UnixNano()).Scan(&s.HasGPS, &s.HasAuthor, &s.HasAIMarker)
	if err != nil {
		return model.MetadataSummary{}, false
	}
	return s, true
}

func (c *Cache) Put(ctx context.Context, f model.MediaFile, s model.MetadataSummary) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO summaries
		(path, size, mod_time, has_gps, has_author, has_ai, inspected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.Path, f.SizeBytes, f.LastModified.UnixNano(), s.HasGPS, s.HasAuthor, s.HasAIMarker, time.Now().Unix())
	return err
}

// Prune drops entries for files that no longer exist and returns how many
// were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT path FROM summaries")
	if err != nil {
		return 0, err
	}
	stale, err := stalePaths(rows)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	for _, p := range stale {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM summaries WHERE path = ?", p); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

type pathRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// stalePaths drains rows and closes them. A partial read is an error so
// nothing is deleted from an incomplete listing.
func stalePaths(rows pathRows) ([]string, error) {
	defer rows.Close()
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stale, rows.Close()
}
