package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestMigrate_RecordsVersionAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestEmbeddingCache_PutGet(t *testing.T) {
	cache := setupTestStore(t).EmbeddingCache()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "ollama/m", "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	vec := []float32{0.25, -1.5, float32(math.Pi), 0}
	require.NoError(t, cache.Put(ctx, "ollama/m", "abc", vec))

	got, ok, err := cache.Get(ctx, "ollama/m", "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vec, got)

	_, ok, err = cache.Get(ctx, "openai/m", "abc")
	require.NoError(t, err)
	assert.False(t, ok, "namespaces must not share entries")
}

func TestEmbeddingCache_PutReplaces(t *testing.T) {
	cache := setupTestStore(t).EmbeddingCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "ns", "h", []float32{1, 2, 3}))
	require.NoError(t, cache.Put(ctx, "ns", "h", []float32{4, 5}))

	got, ok, err := cache.Get(ctx, "ns", "h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{4, 5}, got)
}

func TestEmbeddingCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.EmbeddingCache().Put(ctx, "ns", "h", []float32{7}))
	require.NoError(t, store.EmbeddingCache().Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.EmbeddingCache().Get(ctx, "ns", "h")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{7}, got)
}

func TestEmbeddingCache_CorruptRow(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.db.Exec(`INSERT INTO embedding_cache (namespace, hash, dimensions, vector) VALUES ('ns', 'h', 3, x'0000803F')`)
	require.NoError(t, err)

	_, ok, err := store.EmbeddingCache().Get(context.Background(), "ns", "h")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFloat32Encoding(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, float32SliceToBytes([]float32{1}))
	assert.Equal(t, []float32{1}, bytesToFloat32Slice([]byte{0x00, 0x00, 0x80, 0x3F}))
	assert.Empty(t, bytesToFloat32Slice(nil))
}
