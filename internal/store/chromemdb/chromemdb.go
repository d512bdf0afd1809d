// Package chromemdb backs the vector index with chromem-go, either
// fully in memory or persisted under a database directory. Every
// ingestion gets its own collection; Close deletes it.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/store"
)

type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// New opens (or creates) the collection named name. Embeddings are
// always supplied by the caller, so no embedding function is attached.
func New(dbPath, name string, persistent, compress bool) (*Index, error) {
	var db *chromem.DB
	var err error
	if persistent {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	log.Debug().Str("collection", name).Bool("persistent", persistent).Msg("chromem collection ready")
	return &Index{db: db, collection: collection}, nil
}

func (idx *Index) Add(ctx context.Context, entries []store.Entry) error {
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:      e.ID,
			Content: e.Content,
			Metadata: map[string]string{
				"page":  strconv.Itoa(e.PageNumber),
				"chunk": strconv.Itoa(e.ChunkID),
			},
			Embedding: e.Embedding,
		})
	}
	if err := idx.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (idx *Index) Search(ctx context.Context, query []float32, topK int) ([]store.Result, error) {
	if count := idx.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: query,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]store.Result, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		out = append(out, store.Result{
			Content:    r.Content,
			PageNumber: page,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

func (idx *Index) Count(ctx context.Context) (int, error) {
	return idx.collection.Count(), nil
}

func (idx *Index) Close() error {
	if err := idx.db.DeleteCollection(idx.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
