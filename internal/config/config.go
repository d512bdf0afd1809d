package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that must be present before the service starts.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

type EmbeddingConfig struct {
	Model string `yaml:"model"`
}

type ChatConfig struct {
	Models       []string `yaml:"models"`
	DefaultModel string   `yaml:"default_model"`
	Temperature  float64  `yaml:"temperature"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type ChromemConfig struct {
	Path       string `yaml:"path"`
	Persistent bool   `yaml:"persistent"`
	Compress   bool   `yaml:"compress"`
}

type PostgresConfig struct {
	DSN       string `yaml:"dsn"`
	Dimension int    `yaml:"dimension"`
	Debug     bool   `yaml:"debug"`
}

// StoreConfig selects the vector index backend: memory, chromem or pgvector.
type StoreConfig struct {
	Type     string         `yaml:"type"`
	Chromem  ChromemConfig  `yaml:"chromem"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	RAG       RAGConfig       `yaml:"rag"`
	Store     StoreConfig     `yaml:"store"`
}

// Load reads a config from path. If the file does not exist, defaults
// are returned. A .env file next to the process is loaded first so the
// credential check sees it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// MissingKeys reports which required credentials are absent from the
// environment. A non-empty result is fatal at startup.
func MissingKeys() []string {
	var missing []string
	for _, key := range []string{EnvAnthropicKey, EnvOpenAIKey} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// KnownModel reports whether model is one of the recognized chat models.
func (c *ChatConfig) KnownModel(model string) bool {
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.Store.Type != "memory" && c.Store.Type != "chromem" && c.Store.Type != "pgvector" {
		return fmt.Errorf("unknown store type: %s", c.Store.Type)
	}
	if c.Store.Type == "pgvector" && c.Store.Postgres.DSN == "" {
		return errors.New("store.postgres.dsn is required for the pgvector store")
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 1 {
		return fmt.Errorf("chat.temperature out of range: %v", c.Chat.Temperature)
	}
	if !c.Chat.KnownModel(c.Chat.DefaultModel) {
		return fmt.Errorf("chat.default_model %q is not in chat.models", c.Chat.DefaultModel)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080"},
		Log:       LogConfig{Dir: "logs"},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
		Chat: ChatConfig{
			Models: []string{
				"claude-3-haiku-20240307",
				"claude-sonnet-4-5-20250929",
			},
			DefaultModel: "claude-3-haiku-20240307",
			Temperature:  0.2,
		},
		RAG: RAGConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 4},
		Store: StoreConfig{
			Type:     "memory",
			Chromem:  ChromemConfig{Path: "./chromemdb", Persistent: true},
			Postgres: PostgresConfig{Dimension: 1536},
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if len(cfg.Chat.Models) == 0 {
		cfg.Chat.Models = defaultConfig().Chat.Models
	}
	if cfg.Chat.DefaultModel == "" {
		cfg.Chat.DefaultModel = cfg.Chat.Models[0]
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Chromem.Path == "" {
		cfg.Store.Chromem.Path = "./chromemdb"
	}
	if cfg.Store.Postgres.Dimension == 0 {
		cfg.Store.Postgres.Dimension = 1536
	}
}
