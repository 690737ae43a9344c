package vectorstore

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"fmt"
	"sync"

	"PDFChat/backend/go/internal/database/milvus"
	"PDFChat/backend/go/pkg/logger"
)

// MilvusStore is a VectorStore backed by one Milvus collection per name.
// Names are mapped through milvus.CollectionName, which keeps distinct names
// in distinct collections. Chunks longer than milvus.MaxChunkBytes are rejected
// with milvus.ErrChunkTooLarge before anything is embedded or created.
type MilvusStore struct {
	client   *milvus.MilvusClient
	embedder interfaces.EmbeddingModel
	log      *logger.Logger
	mu       sync.Mutex
}

// NewMilvusStore wraps an initialized Milvus client.
func NewMilvusStore(client *milvus.MilvusClient, embedder interfaces.EmbeddingModel, log *logger.Logger) (*MilvusStore, error) {
	if client == nil || client.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusStore{client: client, embedder: embedder, log: log.WithField("vector_store", "milvus")}, nil
}

func (s *MilvusStore) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	return s.client.HasCollection(ctx, milvus.CollectionName(name))
}

func (s *MilvusStore) Create(ctx context.Context, name string, chunks []string) (interfaces.Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	if err := milvus.CheckChunks(chunks); err != nil {
		return nil, fmt.Errorf("cannot store %s: %w", name, err)
	}

	vectors, err := embedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for %s: %w", name, err)
	}

	dim := s.client.Config.Dim
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	coll := milvus.CollectionName(name)
	if err := s.client.CreateCollection(ctx, coll, dim); err != nil {
		return nil, err
	}
	if err := s.client.InsertBatch(ctx, coll, chunkIDs(len(chunks)), chunks, vectors); err != nil {
		if derr := s.client.DropCollection(ctx, coll); derr != nil {
			s.log.Warn(fmt.Sprintf("failed to drop partial collection %s: %v", coll, derr))
		}
		return nil, err
	}

	s.log.WithField("collection", coll).Info(fmt.Sprintf("created collection with %d chunks", len(chunks)))
	return &milvusCollection{name: name, coll: coll, client: s.client, embedder: s.embedder}, nil
}

func (s *MilvusStore) Load(ctx context.Context, name string) (interfaces.Collection, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	coll := milvus.CollectionName(name)
	if err := s.client.LoadCollection(ctx, coll); err != nil {
		return nil, err
	}
	return &milvusCollection{name: name, coll: coll, client: s.client, embedder: s.embedder}, nil
}

func (s *MilvusStore) Close() error {
	return s.client.Close()
}

type milvusCollection struct {
	name     string
	coll     string
	client   *milvus.MilvusClient
	embedder interfaces.EmbeddingModel
}

func (c *milvusCollection) Name() string { return c.name }

func (c *milvusCollection) Count(ctx context.Context) (int, error) {
	return c.client.Count(ctx, c.coll)
}

func (c *milvusCollection) Query(ctx context.Context, text string, n int) ([]*schema.Document, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	n = clampResults(n, count)
	if n == 0 {
		return []*schema.Document{}, nil
	}

	vector, err := embedOne(ctx, c.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := c.client.Search(ctx, c.coll, vector, n)
	if err != nil {
		return nil, err
	}
	docs := make([]*schema.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, newResult(c.name, h.ID, h.Chunk, h.Score))
	}
	return docs, nil
}
