package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/answer"
	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/loader"
	"pdf-rag/internal/logging"
	"pdf-rag/internal/pipeline"
	"pdf-rag/internal/server"
	"pdf-rag/internal/session"
	"pdf-rag/internal/splitter"
	"pdf-rag/internal/store"
	"pdf-rag/internal/store/chromemdb"
	"pdf-rag/internal/store/memory"
	"pdf-rag/internal/store/pgvector"
)

var cli struct {
	Config string `help:"Path to the config file." default:"./configs/config.yaml"`
	Addr   string `help:"Listen address, overrides the config."`
}

func main() {
	kong.Parse(&cli, kong.Name("pdf-rag"), kong.Description("PDF question answering over HTTP."))

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Setup(cfg.Log.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.Info().Msg("environment variables loaded")

	// The credential gate: refuse to start with any required key absent.
	if missing := config.MissingKeys(); len(missing) > 0 {
		log.Error().Strs("keys", missing).Msg("missing API keys")
		fmt.Fprintf(os.Stderr, "missing API keys: %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}
	log.Info().Msg("all required API keys are present")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing embedder")
	}

	factory, err := indexFactory(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing vector store")
	}

	pipe := pipeline.New(
		loader.New(),
		splitter.New(),
		embedder,
		answer.NewAnthropic(),
		factory,
		cfg.RAG.TopK,
	)

	srv := server.New(cfg, session.NewManager(pipe))

	addr := cfg.Server.Addr
	if cli.Addr != "" {
		addr = cli.Addr
	}
	log.Info().Str("addr", addr).Str("store", cfg.Store.Type).Msg("starting server")
	if err := srv.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// indexFactory selects the vector index backend from the config.
func indexFactory(cfg *config.Config) (store.Factory, error) {
	switch cfg.Store.Type {
	case "memory":
		return func(ctx context.Context, name string) (store.Index, error) {
			return memory.New(), nil
		}, nil
	case "chromem":
		cc := cfg.Store.Chromem
		return func(ctx context.Context, name string) (store.Index, error) {
			return chromemdb.New(cc.Path, name, cc.Persistent, cc.Compress)
		}, nil
	case "pgvector":
		pc := cfg.Store.Postgres
		db, err := pgvector.Connect(&pc)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, name string) (store.Index, error) {
			return pgvector.New(ctx, db, "chunks_"+name, pc.Dimension)
		}, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}
