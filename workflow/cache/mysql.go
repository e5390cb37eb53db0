package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/groundswell-dev/groundswell/workflow"
)

// MySQLCache is a MySQL-backed workflow.Cache for multi-process
// deployments (grounded on the teacher's store.MySQLStore): a pooled
// connection with bounded lifetime and idle timeout, auto-migrated schema.
type MySQLCache struct {
	db     *sql.DB
	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewMySQLCache opens a connection pool against dsn and prepares its
// schema.
func NewMySQLCache(dsn string) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("workflow/cache: open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("workflow/cache: ping mysql: %w", err)
	}

	c := &MySQLCache{db: db}
	if err := c.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *MySQLCache) createTable(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_cache (
			cache_key VARCHAR(255) PRIMARY KEY,
			value MEDIUMTEXT NOT NULL,
			expires_at TIMESTAMP NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("workflow/cache: create table: %w", err)
	}
	return nil
}

func (c *MySQLCache) Get(ctx context.Context, key string) (any, error) {
	var raw string
	var expiresAt sql.NullTime
	row := c.db.QueryRowContext(ctx, `SELECT value, expires_at FROM workflow_cache WHERE cache_key = ?`, key)
	if err := row.Scan(&raw, &expiresAt); err != nil {
		c.recordMiss()
		return nil, workflow.ErrCacheMiss
	}
	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM workflow_cache WHERE cache_key = ?`, key)
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

func (c *MySQLCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("workflow/cache: encode %q: %w", key, err)
	}
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO workflow_cache (cache_key, value, expires_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), expires_at = VALUES(expires_at)
	`, key, string(data), expiresAt)
	if err != nil {
		return fmt.Errorf("workflow/cache: set %q: %w", key, err)
	}
	return nil
}

func (c *MySQLCache) Stats() workflow.CacheStats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	var count int
	_ = c.db.QueryRow(`SELECT COUNT(*) FROM workflow_cache`).Scan(&count)
	return workflow.CacheStats{Entries: count, Hits: hits, Misses: misses}
}

func (c *MySQLCache) recordHit()  { c.mu.Lock(); c.hits++; c.mu.Unlock() }
func (c *MySQLCache) recordMiss() { c.mu.Lock(); c.misses++; c.mu.Unlock() }

// Close releases the underlying connection pool.
func (c *MySQLCache) Close() error { return c.db.Close() }

var _ workflow.Cache = (*MySQLCache)(nil)
