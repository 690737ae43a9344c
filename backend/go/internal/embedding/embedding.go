package embedding

import (
	"PDFChat/backend/go/internal/config"
	"context"
	"fmt"
)

// NewEmdModel 根据配置中的提供商创建并返回一个新的 Embedding 模型实例。
// gemini 提供商在 API 密钥缺失时返回 config.ErrMissingAPIKey，此时不会创建任何客户端。
//
// 参数:
//
//	ctx: 上下文，用于创建客户端。
//	cfg: Embedding 配置。
//
// 返回值:
//
//	Embedding: 新创建的 Embedding 模型实例。
//	error: 如果提供商不支持或模型初始化失败，则返回错误。
func NewEmdModel(ctx context.Context, cfg config.EmbeddingConfig) (Embedding, error) {
	switch ModelType(cfg.Provider) {
	case Google:
		g := cfg.Gemini
		return NewGoogleModel(ctx, g.APIKey, g.Model, g.TaskType, g.Title)
	case Ollama:
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider) // 如果提供商不支持，返回错误。
	}
}
