package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/groundswell-dev/groundswell/workflow"
)

// SQLiteCache is a single-file SQLite-backed workflow.Cache (grounded on
// the teacher's store.SQLiteStore): WAL mode for concurrent reads, a busy
// timeout so concurrent writers back off instead of failing outright, and
// auto-migration of its one table on first use.
type SQLiteCache struct {
	db     *sql.DB
	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewSQLiteCache opens (creating if absent) a SQLite database at path and
// prepares its schema. Pass ":memory:" for an ephemeral cache.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("workflow/cache: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("workflow/cache: %s: %w", pragma, err)
		}
	}

	c := &SQLiteCache{db: db}
	if err := c.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) createTable(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("workflow/cache: create table: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (any, error) {
	var raw string
	var expiresAt sql.NullTime
	row := c.db.QueryRowContext(ctx, `SELECT value, expires_at FROM workflow_cache WHERE key = ?`, key)
	if err := row.Scan(&raw, &expiresAt); err != nil {
		c.recordMiss()
		return nil, workflow.ErrCacheMiss
	}
	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM workflow_cache WHERE key = ?`, key)
		c.recordMiss()
		return nil, workflow.ErrCacheMiss
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("workflow/cache: decode %q: %w", key, err)
	}
	c.recordHit()
	return value, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("workflow/cache: encode %q: %w", key, err)
	}
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO workflow_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, string(data), expiresAt)
	if err != nil {
		return fmt.Errorf("workflow/cache: set %q: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Stats() workflow.CacheStats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	var count int
	_ = c.db.QueryRow(`SELECT COUNT(*) FROM workflow_cache`).Scan(&count)
	return workflow.CacheStats{Entries: count, Hits: hits, Misses: misses}
}

func (c *SQLiteCache) recordHit()  { c.mu.Lock(); c.hits++; c.mu.Unlock() }
func (c *SQLiteCache) recordMiss() { c.mu.Lock(); c.misses++; c.mu.Unlock() }

// Close releases the underlying database connection.
func (c *SQLiteCache) Close() error { return c.db.Close() }

var _ workflow.Cache = (*SQLiteCache)(nil)
