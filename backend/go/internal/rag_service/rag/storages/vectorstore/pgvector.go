package vectorstore

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"fmt"

	"PDFChat/backend/go/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS rag_collections (
	name       TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS rag_chunks (
	collection TEXT NOT NULL REFERENCES rag_collections(name) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  vector NOT NULL,
	PRIMARY KEY (collection, id)
);`

// PgvectorStore is a VectorStore kept in two PostgreSQL tables.
// Collections share rag_chunks and are told apart by the collection column.
type PgvectorStore struct {
	pool     *pgxpool.Pool
	embedder interfaces.EmbeddingModel
	log      *logger.Logger
}

// NewPgvectorStore creates the tables if needed.
func NewPgvectorStore(ctx context.Context, pool *pgxpool.Pool, embedder interfaces.EmbeddingModel, log *logger.Logger) (*PgvectorStore, error) {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to create pgvector tables: %w", err)
	}
	return &PgvectorStore{pool: pool, embedder: embedder, log: log.WithField("vector_store", "pgvector")}, nil
}

func (s *PgvectorStore) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rag_collections WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	return exists, nil
}

// Create registers name and inserts its chunks in one transaction.
func (s *PgvectorStore) Create(ctx context.Context, name string, chunks []string) (interfaces.Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if exists, err := s.Exists(ctx, name); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	vectors, err := embedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for %s: %w", name, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `INSERT INTO rag_collections (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to register collection %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	batch := &pgx.Batch{}
	for i, id := range chunkIDs(len(chunks)) {
		batch.Queue(`INSERT INTO rag_chunks (collection, id, content, embedding) VALUES ($1, $2, $3, $4)`,
			name, id, chunks[i], pgvector.NewVector(vectors[i]))
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to insert chunks for %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit collection %s: %w", name, err)
	}

	s.log.WithField("collection", name).Info(fmt.Sprintf("created collection with %d chunks", len(chunks)))
	return &pgCollection{name: name, store: s}, nil
}

func (s *PgvectorStore) Load(ctx context.Context, name string) (interfaces.Collection, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &pgCollection{name: name, store: s}, nil
}

// Close leaves the shared pool open. It is closed by postgres.Close.
func (s *PgvectorStore) Close() error {
	return nil
}

type pgCollection struct {
	name  string
	store *PgvectorStore
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.pool.QueryRow(ctx, `SELECT count(*) FROM rag_chunks WHERE collection = $1`, c.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.name, err)
	}
	return n, nil
}

func (c *pgCollection) Query(ctx context.Context, text string, n int) ([]*schema.Document, error) {
	if n <= 0 {
		return []*schema.Document{}, nil
	}
	vector, err := embedOne(ctx, c.store.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// LIMIT already bounds the result to the collection size.
	rows, err := c.store.pool.Query(ctx, `
		SELECT id, content, 1 - (embedding <=> $2) AS similarity
		FROM rag_chunks
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3`, c.name, pgvector.NewVector(vector), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := []*schema.Document{}
	for rows.Next() {
		var (
			id, content string
			similarity  float64
		)
		if err := rows.Scan(&id, &content, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		docs = append(docs, newResult(c.name, id, content, float32(similarity)))
	}
	return docs, rows.Err()
}
