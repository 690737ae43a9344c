package embeddings

import (
	"context"
	"errors"
	"testing"

	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedding struct {
	batches int
}

func (s *stubEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (s *stubEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestAdapter_BuildsClientOnce(t *testing.T) {
	calls := 0
	stub := &stubEmbedding{}
	a := NewAdapter(func(context.Context) (embedding.Embedding, error) {
		calls++
		return stub, nil
	})
	assert.Equal(t, 0, calls)

	vecs, err := a.Embed(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, vecs)

	v, err := a.EmbedQuery(context.Background(), "ccc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, v)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, stub.batches)
}

func TestAdapter_EmptyInputSkipsFactory(t *testing.T) {
	a := NewAdapter(func(context.Context) (embedding.Embedding, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})
	vecs, err := a.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestAdapter_RetriesAfterFactoryError(t *testing.T) {
	calls := 0
	a := NewAdapter(func(context.Context) (embedding.Embedding, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &stubEmbedding{}, nil
	})

	_, err := a.EmbedQuery(context.Background(), "x")
	require.Error(t, err)
	_, err = a.EmbedQuery(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFromConfig_MissingKeyOnFirstUse(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Gemini.APIKey = ""
	a := FromConfig(cfg)

	_, err := a.Embed(context.Background(), []string{"hello"})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.NoError(t, a.Close())
}
