// Package memory is an in-process vector index using brute-force
// cosine similarity.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"pdf-rag/internal/store"
)

type Index struct {
	mu      sync.RWMutex
	entries []store.Entry
	norms   []float32
}

func New() *Index { return &Index{} }

func (idx *Index) Add(ctx context.Context, entries []store.Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return errors.New("entry has no embedding")
		}
		idx.entries = append(idx.entries, e)
		idx.norms = append(idx.norms, norm(e.Embedding))
	}
	return nil
}

func (idx *Index) Search(ctx context.Context, query []float32, topK int) ([]store.Result, error) {
	if len(query) == 0 {
		return nil, errors.New("empty query vector")
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 {
		topK = 4
	}
	if topK > len(idx.entries) {
		topK = len(idx.entries)
	}

	qn := norm(query)
	scores := make([]float32, len(idx.entries))
	for i, e := range idx.entries {
		scores[i] = cosine(e.Embedding, query, idx.norms[i], qn)
	}

	order := make([]int, len(idx.entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	results := make([]store.Result, 0, topK)
	for _, i := range order[:topK] {
		results = append(results, store.Result{
			Content:    idx.entries[i].Content,
			PageNumber: idx.entries[i].PageNumber,
			Similarity: scores[i],
		})
	}
	return results, nil
}

func (idx *Index) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = nil
	idx.norms = nil
	return nil
}

func cosine(a, b []float32, an, bn float32) float32 {
	if an == 0 || bn == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum / (an * bn)
}

func norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
