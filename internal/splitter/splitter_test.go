package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func TestSplitBoundsChunkLength(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: strings.Repeat("lorem ipsum dolor sit amet ", 200)},
		{Number: 2, Text: strings.Repeat("consectetur adipiscing elit ", 150)},
	}

	s := New()
	chunks, err := s.Split(pages, 500, 100)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 500)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestSplitNonEmptyPagesYieldAtLeastOneChunk(t *testing.T) {
	pages := []models.Page{{Number: 1, Text: "a short page"}}

	chunks, err := New().Split(pages, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short page", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestSplitCarriesPageMetadataAndStableOrder(t *testing.T) {
	pages := []models.Page{
		{Number: 3, Text: strings.Repeat("alpha beta gamma ", 100)},
		{Number: 7, Text: "tail page"},
	}

	chunks, err := New().Split(pages, 200, 50)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	for i, c := range chunks {
		assert.Equal(t, i+1, c.ChunkID, "chunk ids are sequential in document order")
	}
	assert.Equal(t, 7, chunks[len(chunks)-1].PageNumber)
	assert.Equal(t, 3, chunks[0].PageNumber)

	again, err := New().Split(pages, 200, 50)
	require.NoError(t, err)
	assert.Equal(t, chunks, again, "a given split is reproducible")
}

func TestSplitDropsWhitespacePieces(t *testing.T) {
	pages := []models.Page{{Number: 1, Text: "   \n\t  "}}

	chunks, err := New().Split(pages, 1000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
