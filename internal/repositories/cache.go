package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/sqlite"
)

// FormCacheKey is the cache key holding the serialized question tree.
const FormCacheKey = "nested-form-builder"

// CacheRepository is a key-value store of strings.
type CacheRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCacheRepository(db *sqlite.Database, logger *slog.Logger) *CacheRepository {
	return &CacheRepository{
		db:     db,
		logger: logger.With("source", "CacheRepository"),
	}
}

// Get returns the value stored under key. ok is false when there is no such entry.
func (r *CacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.ReadOnly.GetContext(ctx, &value, `SELECT value FROM cache_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read cache entry", slog.String("key", key))
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (r *CacheRepository) Put(ctx context.Context, key string, value string) error {
	stmt := `INSERT INTO cache_entries (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, key, value); err != nil {
		return errors.Wrap(err, "write cache entry", slog.String("key", key))
	}
	return nil
}

// Delete removes the entry under key. Deleting a missing entry is not an error.
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return errors.Wrap(err, "delete cache entry", slog.String("key", key))
	}
	return nil
}

// Entry binds the repository to a single key.
func (r *CacheRepository) Entry(key string) CacheEntry {
	return CacheEntry{repo: r, key: key}
}

// CacheEntry is a single cache key that can be loaded, stored and erased.
type CacheEntry struct {
	repo *CacheRepository
	key  string
}

func (e CacheEntry) Load(ctx context.Context) (string, bool, error) {
	return e.repo.Get(ctx, e.key)
}

func (e CacheEntry) Store(ctx context.Context, raw string) error {
	return e.repo.Put(ctx, e.key, raw)
}

func (e CacheEntry) Erase(ctx context.Context) error {
	return e.repo.Delete(ctx, e.key)
}
