package llm

import (
	"context"
	"testing"

	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGemini_MissingAPIKey(t *testing.T) {
	g, err := NewGemini(context.Background(), config.DefaultGenerationModel, "")
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Nil(t, g)
}

func TestNewClient(t *testing.T) {
	cfg := config.Default().LLM
	cfg.Gemini.APIKey = ""

	_, err := NewClient(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)

	cfg.Provider = "ollama"
	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, c)

	cfg.Provider = "huggingface"
	_, err = NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestFromGenaiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Acme "), genai.Text("and Globex.")}}},
			{Content: nil},
		},
	}

	out := fromGenaiResponse(resp)
	require.Len(t, out.Content, 1)
	text, err := FirstText(out)
	require.NoError(t, err)
	assert.Equal(t, "Acme and Globex.", text)
	assert.Equal(t, models.SpeakerModel, out.Content[0].Role)
}

func TestFirstText_Empty(t *testing.T) {
	_, err := FirstText(&models.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = FirstText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestToOllamaPrompt(t *testing.T) {
	req := models.NewTextRequest("QUESTION: hi")
	assert.Equal(t, "QUESTION: hi", toOllamaPrompt(req))
}
