package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, 0.2, cfg.Chat.Temperature)
	assert.Equal(t, "memory", cfg.Store.Type)
	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.NotEmpty(t, cfg.Chat.Models)
}

func TestMissingKeys(t *testing.T) {
	t.Setenv(EnvAnthropicKey, "anthropic-key")
	t.Setenv(EnvOpenAIKey, "")

	missing := MissingKeys()
	assert.Equal(t, []string{EnvOpenAIKey}, missing)

	t.Setenv(EnvOpenAIKey, "openai-key")
	assert.Empty(t, MissingKeys())

	t.Setenv(EnvAnthropicKey, "")
	t.Setenv(EnvOpenAIKey, "")
	assert.Equal(t, []string{EnvAnthropicKey, EnvOpenAIKey}, MissingKeys())
}

func TestKnownModel(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Chat.KnownModel("claude-3-haiku-20240307"))
	assert.True(t, cfg.Chat.KnownModel("claude-sonnet-4-5-20250929"))
	assert.False(t, cfg.Chat.KnownModel("gpt-4"))
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg.Store.Type = "faiss"
	require.Error(t, cfg.Validate())

	cfg.Store.Type = "pgvector"
	require.Error(t, cfg.Validate(), "pgvector needs a dsn")

	cfg.Store.Type = "memory"
	cfg.Chat.Temperature = 1.5
	require.Error(t, cfg.Validate())
}
