package interfaces

import (
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"errors"
)

// ErrUpstream marks failures reported by a remote embedding or generation provider.
var ErrUpstream = errors.New("upstream model error")

// Loader is the interface for loading a source file into Document objects.
type Loader interface {
	Load(ctx context.Context, path string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting a list of Documents into smaller chunks.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// EmbeddingModel is the interface for a text embedding model.
// Implementations return exactly one vector per input text, in input order.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a large language model that can generate text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Collection is a named, persistent set of embedded chunks.
type Collection interface {
	Name() string
	Count(ctx context.Context) (int, error)
	// Query embeds text and returns at most n chunks ranked best-first.
	Query(ctx context.Context, text string, n int) ([]*schema.Document, error)
}

// VectorStore is the gateway to a persistent vector-index engine.
type VectorStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Create embeds chunks and stores them under name with positional IDs.
	// It fails if the collection already exists.
	Create(ctx context.Context, name string, chunks []string) (Collection, error)
	// Load attaches to an existing collection. It fails if the collection is absent.
	Load(ctx context.Context, name string) (Collection, error)
	Close() error
}
