package embedding

import "context"

// Embedding 是文本向量化模型的统一接口。实现可以额外实现 io.Closer。
type Embedding interface {
	// Embed 返回单个文本的向量，查询时使用。
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch 返回每个输入文本的向量，顺序与输入一致。
	// 实现负责按提供商的单次请求上限分批。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType 标识 embedding 提供商，取值与配置中的 provider 一致。
type ModelType string

const (
	Google ModelType = "gemini"
	Ollama ModelType = "ollama"
)
