package llms

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/llm"
	"PDFChat/backend/go/internal/models"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"context"
	"fmt"
	"io"
	"sync"
)

// Factory builds the underlying LLM client on first use.
type Factory func(ctx context.Context) (llm.LLM, error)

// Adapter adapts the project's LLM clients to the generic string-in/string-out LLM interface.
type Adapter struct {
	mu      sync.Mutex
	factory Factory
	client  llm.LLM
}

// NewAdapter creates an adapter around factory.
func NewAdapter(factory Factory) *Adapter {
	return &Adapter{factory: factory}
}

// FromConfig creates an adapter that builds its client from cfg.
func FromConfig(cfg config.LLMConfig) *Adapter {
	return NewAdapter(func(ctx context.Context) (llm.LLM, error) {
		return llm.NewClient(ctx, cfg)
	})
}

func (a *Adapter) get(ctx context.Context) (llm.LLM, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		c, err := a.factory(ctx)
		if err != nil {
			return nil, err
		}
		a.client = c
	}
	return a.client, nil
}

// Generate wraps prompt into a single-turn request and returns the first candidate's text.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	c, err := a.get(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.GenerateContent(ctx, models.NewTextRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: llm failed to generate content: %w", interfaces.ErrUpstream, err)
	}
	text, err := llm.FirstText(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", interfaces.ErrUpstream, err)
	}
	return text, nil
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

var _ interfaces.LLM = (*Adapter)(nil)
