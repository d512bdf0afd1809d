// Package answer produces a grounded natural-language answer from a
// question and retrieved context chunks, via the Anthropic Messages API.
package answer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
)

const maxTokens = 1024

const promptTemplate = `Answer the question based on the provided context.
If you don't know the answer or if the context doesn't contain
relevant information, say you don't know.

Context: %s

Question: %s

Answer:`

// Answerer turns a question plus context chunks into an answer string.
type Answerer interface {
	Answer(ctx context.Context, question string, contexts []string, model string, temperature float64) (string, error)
}

type anthropicAnswerer struct {
	client anthropic.Client
}

// NewAnthropic builds an Answerer over the Anthropic API. The key is
// read from the environment, verified at startup.
func NewAnthropic() Answerer {
	client := anthropic.NewClient(option.WithAPIKey(os.Getenv(config.EnvAnthropicKey)))
	return &anthropicAnswerer{client: client}
}

// BuildPrompt assembles the fixed grounding prompt from the retrieved
// chunk texts and the literal question.
func BuildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)
}

func (a *anthropicAnswerer) Answer(ctx context.Context, question string, contexts []string, model string, temperature float64) (string, error) {
	log.Debug().Str("model", model).Float64("temperature", temperature).Msg("invoking chat model")

	rsp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(question, contexts))),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no response from model")
	}
	return b.String(), nil
}
