package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/loader"
	"pdf-rag/internal/models"
	"pdf-rag/internal/splitter"
	"pdf-rag/internal/store"
	"pdf-rag/internal/store/memory"
)

type fakeEmbedder struct {
	fail bool
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embed(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding service unavailable")
	}
	return embed(text), nil
}

// embed derives a deterministic 3-dim vector from the text.
func embed(text string) []float32 {
	return []float32{float32(len(text)%7 + 1), float32(len(text)%5 + 1), 1}
}

type fakeAnswerer struct {
	fail  bool
	reply string
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string, contexts []string, model string, temperature float64) (string, error) {
	if f.fail {
		return "", errors.New("model overloaded")
	}
	return f.reply, nil
}

type stubLoader struct {
	pages []models.Page
	err   error
}

func (s *stubLoader) Load(path string) ([]models.Page, error) { return s.pages, s.err }

func memoryFactory(ctx context.Context, name string) (store.Index, error) {
	return memory.New(), nil
}

func newTestPipeline(t *testing.T, embedder *fakeEmbedder, answerer *fakeAnswerer) *Pipeline {
	t.Helper()
	p := New(loader.New(), splitter.New(), embedder, answerer, memoryFactory, 4)
	p.TempDir = t.TempDir()
	return p
}

func validOpts() IngestOptions {
	return IngestOptions{ChunkSize: 1000, ChunkOverlap: 200}
}

func TestIngestSuccess(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{reply: "ok"})
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 100))

	index, stats, err := p.Ingest(context.Background(), data, "notes.txt", validOpts())
	require.NoError(t, err)
	require.NotNil(t, index)
	require.NotNil(t, stats)

	assert.Equal(t, 1, stats.Pages)
	assert.GreaterOrEqual(t, stats.Chunks, 1)
	assert.Equal(t, 1000, stats.ChunkSize)
	assert.Equal(t, 200, stats.ChunkOverlap)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Chunks, count)
}

func TestIngestRemovesTempFileOnEveryPath(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"success", []byte("some document content that is perfectly valid")},
		{"empty document", []byte("   \n ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{})
			_, _, _ = p.Ingest(context.Background(), tc.data, "doc.txt", validOpts())

			left, err := os.ReadDir(p.TempDir)
			require.NoError(t, err)
			assert.Empty(t, left, "temp directory must be empty after ingestion")
		})
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{})

	_, _, err := p.Ingest(context.Background(), []byte("  \n\t "), "blank.txt", validOpts())
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngestEmptyChunkSet(t *testing.T) {
	// The loader reports a page, but its text splits to nothing.
	p := New(&stubLoader{pages: []models.Page{{Number: 1, Text: "   "}}}, splitter.New(), &fakeEmbedder{}, &fakeAnswerer{}, memoryFactory, 4)
	p.TempDir = t.TempDir()

	_, _, err := p.Ingest(context.Background(), []byte("x"), "doc.txt", validOpts())
	require.ErrorIs(t, err, ErrEmptyChunkSet)
}

func TestIngestValidatesChunkingBounds(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{})
	ctx := context.Background()

	for _, opts := range []IngestOptions{
		{ChunkSize: 50, ChunkOverlap: 0},
		{ChunkSize: 5000, ChunkOverlap: 0},
		{ChunkSize: 1000, ChunkOverlap: 600},
		{ChunkSize: 200, ChunkOverlap: 200},
		{ChunkSize: 200, ChunkOverlap: -1},
	} {
		_, _, err := p.Ingest(ctx, []byte("content"), "doc.txt", opts)
		assert.ErrorIs(t, err, ErrInvalidChunking, "opts %+v", opts)
	}
}

func TestIngestEmbeddingFailureIsAllOrNothing(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{fail: true}, &fakeAnswerer{})

	index, stats, err := p.Ingest(context.Background(), []byte("valid document content"), "doc.txt", validOpts())
	require.Error(t, err)
	assert.Nil(t, index)
	assert.Nil(t, stats)
}

func TestAnswerReturnsModelTextVerbatim(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{reply: "  The document is about foxes.  "})

	index, _, err := p.Ingest(context.Background(), []byte("the quick brown fox"), "doc.txt", validOpts())
	require.NoError(t, err)

	result := p.Answer(context.Background(), "What is this document about?", index, QueryOptions{Model: "claude-3-haiku-20240307", Temperature: 0.2})
	require.False(t, result.Failed())
	assert.Equal(t, "  The document is about foxes.  ", result.Answer, "no post-processing of the model output")
}

func TestAnswerFailureBecomesTaggedResult(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeAnswerer{fail: true})

	index, _, err := p.Ingest(context.Background(), []byte("some content to index"), "doc.txt", validOpts())
	require.NoError(t, err)

	result := p.Answer(context.Background(), "anything?", index, QueryOptions{})
	require.True(t, result.Failed())
	assert.True(t, strings.HasPrefix(result.Err, "Error: "), "failures surface as an error string: %q", result.Err)
	assert.Empty(t, result.Answer)
}
