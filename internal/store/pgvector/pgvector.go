// Package pgvector backs the vector index with Postgres + pgvector
// through bun. Each ingestion writes into its own table so a rebuild
// never disturbs the previous index before it is swapped in.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	pgv "github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/config"
	"pdf-rag/internal/store"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:document_chunks"`

	ID         int64      `bun:"id,pk,autoincrement"`
	Content    string     `bun:"content,notnull"`
	PageNumber int        `bun:"page_number,notnull"`
	ChunkID    int        `bun:"chunk_id,notnull"`
	Embedding  pgv.Vector `bun:"embedding,notnull"`
}

type searchRow struct {
	Content    string  `bun:"content"`
	PageNumber int     `bun:"page_number"`
	Similarity float32 `bun:"similarity"`
}

// Connect opens a bun handle over the pgdriver connector. The handle is
// shared by every index built on this backend.
func Connect(cfg *config.PostgresConfig) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

type Index struct {
	db    *bun.DB
	table string
	dim   int
}

// New creates the per-ingestion table and returns an index over it.
func New(ctx context.Context, db *bun.DB, table string, dimension int) (*Index, error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			page_number INT NOT NULL,
			chunk_id INT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, table, dimension))
	if err != nil {
		return nil, fmt.Errorf("failed to create index table: %w", err)
	}
	return &Index{db: db, table: table, dim: dimension}, nil
}

func (idx *Index) Add(ctx context.Context, entries []store.Entry) error {
	rows := make([]chunkRow, 0, len(entries))
	for _, e := range entries {
		if len(e.Embedding) != idx.dim {
			return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(e.Embedding), idx.dim)
		}
		rows = append(rows, chunkRow{
			Content:    e.Content,
			PageNumber: e.PageNumber,
			ChunkID:    e.ChunkID,
			Embedding:  pgv.NewVector(e.Embedding),
		})
	}
	_, err := idx.db.NewInsert().
		Model(&rows).
		ModelTableExpr("? AS document_chunks", bun.Ident(idx.table)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

func (idx *Index) Search(ctx context.Context, query []float32, topK int) ([]store.Result, error) {
	vec := pgv.NewVector(query)
	var rows []searchRow
	err := idx.db.NewSelect().
		TableExpr("? AS d", bun.Ident(idx.table)).
		ColumnExpr("d.content, d.page_number, 1 - (d.embedding <=> ?) AS similarity", vec).
		OrderExpr("d.embedding <=> ?", vec).
		Limit(topK).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	out := make([]store.Result, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Result{
			Content:    r.Content,
			PageNumber: r.PageNumber,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

func (idx *Index) Count(ctx context.Context) (int, error) {
	return idx.db.NewSelect().TableExpr("?", bun.Ident(idx.table)).Count(ctx)
}

// Close drops the per-ingestion table. The shared bun handle stays open.
func (idx *Index) Close() error {
	_, err := idx.db.ExecContext(context.Background(), fmt.Sprintf(`DROP TABLE IF EXISTS %q`, idx.table))
	return err
}
