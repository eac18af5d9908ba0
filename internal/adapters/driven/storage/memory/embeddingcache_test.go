package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingCache_PutGet(t *testing.T) {
	c := NewEmbeddingCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "ns", "h")
	require.NoError(t, err)
	assert.False(t, ok)

	vec := []float32{1, 2}
	require.NoError(t, c.Put(ctx, "ns", "h", vec))
	vec[0] = 99

	got, ok, err := c.Get(ctx, "ns", "h")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got, "stored vector must not alias the caller's slice")

	got[1] = 42
	again, _, _ := c.Get(ctx, "ns", "h")
	assert.Equal(t, []float32{1, 2}, again)

	_, ok, _ = c.Get(ctx, "other", "h")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.NoError(t, c.Close())
}

func TestEmbeddingCache_Concurrent(t *testing.T) {
	c := NewEmbeddingCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Put(ctx, "ns", string(rune('a'+i)), []float32{float32(i)})
			_, _, _ = c.Get(ctx, "ns", "a")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, c.Len())
}
