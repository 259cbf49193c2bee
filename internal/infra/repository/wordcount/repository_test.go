package wordcount

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/9triver/multilang/internal/infra/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repo {
	t.Helper()
	cfg := database.Config{WordCountDBPath: filepath.Join(t.TempDir(), "db", "wordcount.db")}
	cfg.ApplyDefaults(t.TempDir())

	repo, err := NewRepoSQLite(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestIncrementAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	n, err := repo.Get(ctx, "storm")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Increment(ctx, "storm", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Increment(ctx, "storm", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.Get(ctx, "storm")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestTop(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for word, times := range map[string]int{"the": 3, "cow": 1, "moon": 2, "jumped": 2} {
		for i := 0; i < times; i++ {
			_, err := repo.Increment(ctx, word, 1)
			require.NoError(t, err)
		}
	}

	top, err := repo.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "the", top[0].Word)
	assert.EqualValues(t, 3, top[0].Count)
	assert.Equal(t, "jumped", top[1].Word)
	assert.Equal(t, "moon", top[2].Word)
}
