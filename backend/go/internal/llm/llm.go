package llm

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/models"
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse 表示模型没有返回任何候选答案。
var ErrEmptyResponse = errors.New("llm returned no candidates")

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// gemini 提供商在 API 密钥缺失时返回 config.ErrMissingAPIKey，不会创建任何网络客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// FirstText 返回第一个候选答案的文本。
func FirstText(resp *models.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Content[0].Text(), nil
}
