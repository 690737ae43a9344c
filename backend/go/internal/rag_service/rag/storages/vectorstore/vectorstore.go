// Package vectorstore implements persistent, named collections of embedded chunks
// on top of chromem-go, Milvus or PostgreSQL with pgvector.
package vectorstore

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrCollectionExists is returned by Create when the name is already taken.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrCollectionNotFound is returned by Load when no collection has the name.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrEmptyName is returned when a collection name is empty.
	ErrEmptyName = errors.New("collection name is empty")
)

// queryEmbedder is implemented by embedders that have a single-text fast path.
type queryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// embedOne embeds a single text with embedder.
func embedOne(ctx context.Context, embedder interfaces.EmbeddingModel, text string) ([]float32, error) {
	if q, ok := embedder.(queryEmbedder); ok {
		return q.EmbedQuery(ctx, text)
	}
	vectors, err := embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(vectors))
	}
	return vectors[0], nil
}

// embedChunks embeds all chunks in one call and checks the count.
func embedChunks(ctx context.Context, embedder interfaces.EmbeddingModel, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}

// chunkIDs returns the positional identifiers "0".."n-1".
func chunkIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}

// clampResults bounds n to the collection size. It returns 0 when nothing can be returned.
func clampResults(n, count int) int {
	if n <= 0 || count <= 0 {
		return 0
	}
	return min(n, count)
}

func newResult(collection, id, text string, score float32) *schema.Document {
	return &schema.Document{
		ID:   id,
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyCollection: collection,
			schema.MetadataKeyScore:      score,
		},
	}
}

var _ interfaces.VectorStore = (*ChromemStore)(nil)
var _ interfaces.VectorStore = (*MilvusStore)(nil)
var _ interfaces.VectorStore = (*PgvectorStore)(nil)
