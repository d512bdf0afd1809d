// Package pipeline orchestrates the document-to-answer flow: the
// ingestion path (loader -> splitter -> embedder -> index) and the
// query path (index -> answerer).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/embedding"
	"pdf-rag/internal/models"
	"pdf-rag/internal/store"
)

// Chunking bounds exposed by the configuration surface.
const (
	MinChunkSize    = 100
	MaxChunkSize    = 2000
	MaxChunkOverlap = 500
)

var (
	// ErrEmptyDocument means the loader yielded zero pages
	// (image-only or corrupt file).
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrEmptyChunkSet means splitting produced zero chunks
	// (all-whitespace document).
	ErrEmptyChunkSet = errors.New("no text chunks were created from the document")
	// ErrInvalidChunking means chunk size/overlap violate their bounds.
	ErrInvalidChunking = errors.New("invalid chunk size or overlap")
)

// Loader turns a file on disk into page-level text records.
type Loader interface {
	Load(path string) ([]models.Page, error)
}

// Splitter cuts pages into overlapping chunks.
type Splitter interface {
	Split(pages []models.Page, chunkSize, chunkOverlap int) ([]models.Chunk, error)
}

// Answerer generates the final answer from question and context.
type Answerer interface {
	Answer(ctx context.Context, question string, contexts []string, model string, temperature float64) (string, error)
}

// IngestOptions carries the caller-selected chunking policy.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

// Validate enforces the chunking invariants: size in [100, 2000],
// overlap in [0, 500], overlap < size.
func (o IngestOptions) Validate() error {
	if o.ChunkSize < MinChunkSize || o.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d out of [%d, %d]", ErrInvalidChunking, o.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap > MaxChunkOverlap {
		return fmt.Errorf("%w: chunk overlap %d out of [0, %d]", ErrInvalidChunking, o.ChunkOverlap, MaxChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidChunking, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}

// QueryOptions carries the caller-selected generation settings.
type QueryOptions struct {
	Model       string
	Temperature float64
}

// Pipeline composes the black-box collaborators. It holds no session
// state of its own.
type Pipeline struct {
	loader   Loader
	splitter Splitter
	embedder embedding.Embedder
	answerer Answerer
	newIndex store.Factory
	topK     int

	// TempDir overrides the scratch directory for uploaded bytes.
	// Empty means the system default.
	TempDir string
}

func New(loader Loader, splitter Splitter, embedder embedding.Embedder, answerer Answerer, newIndex store.Factory, topK int) *Pipeline {
	if topK <= 0 {
		topK = 4
	}
	return &Pipeline{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		answerer: answerer,
		newIndex: newIndex,
		topK:     topK,
	}
}

// Ingest builds a fresh index from uploaded bytes. Construction is
// all-or-nothing: any failure returns before an index is handed to the
// caller, and the temp file is removed on every exit path.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filename string, opts IngestOptions) (store.Index, *models.Stats, error) {
	start := time.Now()
	log.Info().Str("file", filename).Int("bytes", len(data)).Msg("starting document processing")

	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	tmp, err := os.CreateTemp(p.TempDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Warn().Err(err).Str("path", tmpPath).Msg("could not delete temp file")
		} else {
			log.Debug().Str("path", tmpPath).Msg("cleaned up temp file")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	log.Debug().Str("path", tmpPath).Msg("temp file created")

	pages, err := p.loader.Load(tmpPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	if len(pages) == 0 {
		return nil, nil, ErrEmptyDocument
	}
	log.Info().Int("pages", len(pages)).Msg("document loaded")

	chunks, err := p.splitter.Split(pages, opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil, ErrEmptyChunkSet
	}
	log.Info().Int("chunks", len(chunks)).Int("chunk_size", opts.ChunkSize).Int("chunk_overlap", opts.ChunkOverlap).Msg("document split")

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	index, err := p.newIndex(ctx, indexName(filename))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create index: %w", err)
	}

	entries := make([]store.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = store.Entry{
			ID:         fmt.Sprintf("%s-%d-%d", filename, c.PageNumber, c.ChunkID),
			Content:    c.Content,
			PageNumber: c.PageNumber,
			ChunkID:    c.ChunkID,
			Embedding:  vectors[i],
		}
	}
	if err := index.Add(ctx, entries); err != nil {
		index.Close()
		return nil, nil, fmt.Errorf("failed to build index: %w", err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		index.Close()
		return nil, nil, fmt.Errorf("failed to validate index: %w", err)
	}
	if count == 0 {
		index.Close()
		return nil, nil, ErrEmptyChunkSet
	}

	stats := &models.Stats{
		Pages:          len(pages),
		Chunks:         len(chunks),
		ElapsedSeconds: time.Since(start).Seconds(),
		ChunkSize:      opts.ChunkSize,
		ChunkOverlap:   opts.ChunkOverlap,
	}
	log.Info().Float64("seconds", stats.ElapsedSeconds).Msg("document processing completed")
	return index, stats, nil
}

// Answer runs the query path. Failures are returned as a tagged Result
// carrying an "Error: ..." string, never as an error: a failed question
// is recoverable and must not disturb the session.
func (p *Pipeline) Answer(ctx context.Context, question string, index store.Index, opts QueryOptions) models.Result {
	start := time.Now()
	log.Info().Str("question", truncate(question, 100)).Msg("processing question")

	queryVec, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return failure("failed to embed question", err)
	}

	results, err := index.Search(ctx, queryVec, p.topK)
	if err != nil {
		return failure("failed to retrieve context", err)
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Content
	}

	text, err := p.answerer.Answer(ctx, question, contexts, opts.Model, opts.Temperature)
	if err != nil {
		return failure("failed to generate answer", err)
	}

	log.Info().Float64("seconds", time.Since(start).Seconds()).Msg("response generated")
	return models.Result{Answer: text}
}

func failure(msg string, err error) models.Result {
	log.Error().Err(err).Msg(msg)
	return models.Result{Err: fmt.Sprintf("Error: %v", err)}
}

func indexName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		base = "doc"
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:8])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
