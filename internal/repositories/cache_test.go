package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestCacheRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewCacheRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Put(ctx, "k", "first"))
	require.NoError(t, repo.Put(ctx, "other", "untouched"))
	require.NoError(t, repo.Put(ctx, "k", "second"))

	value, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", value)

	require.NoError(t, repo.Delete(ctx, "k"))
	require.NoError(t, repo.Delete(ctx, "k"), "deleting twice is fine")
	_, ok, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	value, ok, err = repo.Get(ctx, "other")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "untouched", value)
}

func TestCacheEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewCacheRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	entry := repo.Entry(repositories.FormCacheKey)

	_, ok, err := entry.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, entry.Store(ctx, `[]`))
	raw, ok, err := entry.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, raw)

	value, ok, err := repo.Get(ctx, "nested-form-builder")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, value)

	require.NoError(t, entry.Erase(ctx))
	_, ok, err = entry.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
