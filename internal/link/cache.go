// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package link

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// SQLiteCache persists raw shared links across runs.
type SQLiteCache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*SQLiteCache, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// the resolve pool writes from many goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shared_links (
		path TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached link for path.
func (c *SQLiteCache) Get(ctx context.Context, path string) (string, bool, error) {
	var u string
	err := c.db.QueryRowContext(ctx, `SELECT url FROM shared_links WHERE path = ?`, path).Scan(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u, true, nil
}

// Put stores the link for path, replacing any previous one.
func (c *SQLiteCache) Put(ctx context.Context, path, rawURL string) error {
	query := `
	INSERT INTO shared_links (path, url, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET url = excluded.url, created_at = excluded.created_at
	`
	_, err := c.db.ExecContext(ctx, query, path, rawURL, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Len returns the number of cached links.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shared_links`).Scan(&n)
	return n, err
}
