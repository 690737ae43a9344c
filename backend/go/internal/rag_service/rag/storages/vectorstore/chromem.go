package vectorstore

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"PDFChat/backend/go/pkg/logger"

	"github.com/philippgille/chromem-go"
)

var (
	dbMu sync.Mutex
	dbs  = map[string]*chromem.DB{}
)

// openDB returns the process-wide DB for path, opening it on first use.
// chromem keeps every collection in memory, so two DB values on the same
// directory would diverge.
func openDB(path string, compress bool) (*chromem.DB, error) {
	key := filepath.Clean(path)

	dbMu.Lock()
	defer dbMu.Unlock()
	if db, ok := dbs[key]; ok {
		return db, nil
	}
	db, err := chromem.NewPersistentDB(key, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store at %s: %w", key, err)
	}
	dbs[key] = db
	return db, nil
}

// ChromemStore is a VectorStore persisted to a local directory by chromem-go.
type ChromemStore struct {
	db       *chromem.DB
	embedder interfaces.EmbeddingModel
	log      *logger.Logger

	// mu serializes Create so two uploads of the same name cannot both succeed.
	mu sync.Mutex
}

// NewChromemStore opens (creating if needed) the store rooted at path.
func NewChromemStore(path string, compress bool, embedder interfaces.EmbeddingModel, log *logger.Logger) (*ChromemStore, error) {
	db, err := openDB(path, compress)
	if err != nil {
		return nil, err
	}
	return &ChromemStore{db: db, embedder: embedder, log: log.WithField("vector_store", "chromem")}, nil
}

func (s *ChromemStore) embedFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedOne(ctx, s.embedder, text)
	}
}

// Exists reports whether a collection named name is stored.
func (s *ChromemStore) Exists(_ context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	// ListCollections does not attach an embedding function, unlike GetCollection.
	_, ok := s.db.ListCollections()[name]
	return ok, nil
}

// Create embeds chunks and stores them under name. Chunk i gets ID strconv.Itoa(i).
// Nothing is persisted if embedding fails.
func (s *ChromemStore) Create(ctx context.Context, name string, chunks []string) (interfaces.Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, _ := s.Exists(ctx, name); exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	vectors, err := embedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for %s: %w", name, err)
	}

	col, err := s.db.CreateCollection(name, nil, s.embedFunc())
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	if len(chunks) > 0 {
		ids := chunkIDs(len(chunks))
		docs := make([]chromem.Document, len(chunks))
		for i, chunk := range chunks {
			docs[i] = chromem.Document{
				ID:        ids[i],
				Content:   chunk,
				Embedding: vectors[i],
				Metadata:  map[string]string{schema.MetadataKeyChunkIndex: ids[i]},
			}
		}
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			if derr := s.db.DeleteCollection(name); derr != nil {
				s.log.Warn(fmt.Sprintf("failed to remove partial collection %s: %v", name, derr))
			}
			return nil, fmt.Errorf("failed to add chunks to %s: %w", name, err)
		}
	}

	s.log.WithField("collection", name).Info(fmt.Sprintf("created collection with %d chunks", len(chunks)))
	return &chromemCollection{col: col, embedder: s.embedder}, nil
}

// Load attaches to an existing collection.
func (s *ChromemStore) Load(_ context.Context, name string) (interfaces.Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	col := s.db.GetCollection(name, s.embedFunc())
	if col == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &chromemCollection{col: col, embedder: s.embedder}, nil
}

// Close is a no-op. Documents are written to disk as they are added.
func (s *ChromemStore) Close() error {
	return nil
}

type chromemCollection struct {
	col      *chromem.Collection
	embedder interfaces.EmbeddingModel
}

func (c *chromemCollection) Name() string {
	return c.col.Name
}

func (c *chromemCollection) Count(context.Context) (int, error) {
	return c.col.Count(), nil
}

// Query returns min(n, Count) chunks, most similar first.
func (c *chromemCollection) Query(ctx context.Context, text string, n int) ([]*schema.Document, error) {
	n = clampResults(n, c.col.Count())
	if n == 0 {
		return []*schema.Document{}, nil
	}

	vector, err := embedOne(ctx, c.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := c.col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.col.Name, err)
	}

	docs := make([]*schema.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, newResult(c.col.Name, r.ID, r.Content, r.Similarity))
	}
	return docs, nil
}
