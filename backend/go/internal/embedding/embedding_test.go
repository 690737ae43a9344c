package embedding

import (
	"context"
	"testing"

	"PDFChat/backend/go/internal/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoogleModel_MissingAPIKey(t *testing.T) {
	m, err := NewGoogleModel(context.Background(), "", config.DefaultEmbeddingModel, config.DefaultTaskType, config.DefaultEmbeddingTitle)
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Nil(t, m)
}

func TestNewEmdModel_GeminiWithoutKey(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Gemini.APIKey = ""

	_, err := NewEmdModel(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewEmdModel_UnknownProvider(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = "cohere"

	_, err := NewEmdModel(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewEmdModel_OllamaNeedsNoKey(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = "ollama"

	m, err := NewEmdModel(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OllamaModel{}, m)
}

func TestParseTaskType(t *testing.T) {
	tt, err := ParseTaskType("retrieval_document")
	require.NoError(t, err)
	assert.Equal(t, genai.TaskTypeRetrievalDocument, tt)

	tt, err = ParseTaskType("")
	require.NoError(t, err)
	assert.Equal(t, genai.TaskTypeUnspecified, tt)

	_, err = ParseTaskType("summarize")
	assert.Error(t, err)
}
