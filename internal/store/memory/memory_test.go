package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/store"
)

func entry(id string, page int, vec []float32) store.Entry {
	return store.Entry{ID: id, Content: id, PageNumber: page, Embedding: vec}
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []store.Entry{
		entry("x", 1, []float32{1, 0, 0}),
		entry("y", 2, []float32{0, 1, 0}),
		entry("xy", 3, []float32{1, 1, 0}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "x", results[0].Content)
	assert.Equal(t, "xy", results[1].Content)
	assert.Equal(t, "y", results[2].Content)
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 1e-6)
	assert.Greater(t, results[1].Similarity, results[2].Similarity)
}

func TestSearchClampsTopK(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []store.Entry{
		entry("a", 1, []float32{1, 0}),
		entry("b", 2, []float32{0, 1}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAddRejectsEmptyEmbedding(t *testing.T) {
	idx := New()
	err := idx.Add(context.Background(), []store.Entry{{ID: "bad", Content: "bad"}})
	require.Error(t, err)
}

func TestCountAndClose(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []store.Entry{entry("a", 1, []float32{1})}))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, idx.Close())
	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
