// Package splitter cuts page text into overlapping fixed-size windows
// suitable for embedding.
package splitter

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"pdf-rag/internal/models"
)

// Splitter wraps the recursive-character text splitter. Chunks are
// produced in document order with 1-based ids so a given split is
// reproducible.
type Splitter struct{}

func New() *Splitter { return &Splitter{} }

// Split cuts each page into chunks of at most chunkSize characters,
// overlapping by chunkOverlap. Page metadata is carried onto every
// chunk. Whitespace-only pieces are dropped.
func (s *Splitter) Split(pages []models.Page, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []models.Chunk
	id := 0
	for _, page := range pages {
		pieces, err := ts.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split page %d: %w", page.Number, err)
		}
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			id++
			chunks = append(chunks, models.Chunk{
				Content:    piece,
				PageNumber: page.Number,
				ChunkID:    id,
			})
		}
	}
	return chunks, nil
}
