package llm

import (
	"PDFChat/backend/go/internal/models"

	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。
//
// 参数:
//
//	model: 要使用的模型名称，为空时默认为 "llama3"。
//	baseURL: Ollama 服务的基准 URL。如果为空，则默认为 "http://localhost:11434"。
//
// 返回值:
//
//	*Ollama: 新创建的 Ollama 客户端实例。
//	error: 如果基准 URL 无效，则返回错误。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// GenerateContent 使用 Ollama API 以非流式方式生成内容。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	var result *olla.GenerateResponse

	stream := false
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: toOllamaPrompt(req),
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return nil, ErrEmptyResponse
	}

	return &models.GenerateContentResponse{
		Content: []models.Content{
			{
				Parts: []*models.Part{{Text: result.Response}},
				Role:  models.SpeakerModel,
			},
		},
		ModelVersion: result.Model,
	}, nil
}

// toOllamaPrompt 将请求中的所有文本部分拼接成一个提示字符串。
func toOllamaPrompt(req *models.GenerateContentRequest) string {
	var sb strings.Builder
	for _, content := range req.Content {
		for _, part := range content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}
