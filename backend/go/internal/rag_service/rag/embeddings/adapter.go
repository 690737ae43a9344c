package embeddings

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/embedding"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"context"
	"fmt"
	"io"
	"sync"
)

// Factory builds the underlying embedding client on first use.
type Factory func(ctx context.Context) (embedding.Embedding, error)

// Adapter adapts the project's embedding clients to the generic EmbeddingModel interface.
// The client is built lazily so a missing credential surfaces on the first embed call
// rather than at startup. A failed build is retried on the next call.
type Adapter struct {
	mu      sync.Mutex
	factory Factory
	client  embedding.Embedding
}

// NewAdapter creates an adapter around factory.
func NewAdapter(factory Factory) *Adapter {
	return &Adapter{factory: factory}
}

// FromConfig creates an adapter that builds its client from cfg.
func FromConfig(cfg config.EmbeddingConfig) *Adapter {
	return NewAdapter(func(ctx context.Context) (embedding.Embedding, error) {
		return embedding.NewEmdModel(ctx, cfg)
	})
}

func (a *Adapter) get(ctx context.Context) (embedding.Embedding, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	c, err := a.factory(ctx)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Embed returns one vector per text, in input order.
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	c, err := a.get(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := c.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %w", interfaces.ErrUpstream, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedQuery embeds a single text. Its signature matches chromem.EmbeddingFunc.
func (a *Adapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c, err := a.get(ctx)
	if err != nil {
		return nil, err
	}
	v, err := c.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %w", interfaces.ErrUpstream, err)
	}
	return v, nil
}

// Close releases the client if it was built and holds resources.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if closer, ok := a.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var _ interfaces.EmbeddingModel = (*Adapter)(nil)
