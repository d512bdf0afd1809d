// Package embedding maps text to fixed-length vectors through an
// OpenAI embedding model. Build-time and query-time embeddings must
// come from the same Embedder instance so the index stays consistent.
package embedding

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
)

// Embedder converts text into embedding vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewOpenAIEmbedder builds an embedder backed by the configured OpenAI
// embedding model. The API key is read from the environment, which the
// startup credential gate has already verified.
func NewOpenAIEmbedder(model string) (Embedder, error) {
	llm, err := openai.New(
		openai.WithToken(os.Getenv(config.EnvOpenAIKey)),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize OpenAI client")
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Error().Err(err).Msg("failed to create embedder")
		return nil, err
	}

	log.Debug().Str("model", model).Msg("embedder initialized")
	return embedder, nil
}
