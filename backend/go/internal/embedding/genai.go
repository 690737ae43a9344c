package embedding

import (
	"PDFChat/backend/go/internal/config"
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxBatchSize 是 BatchEmbedContents 单次请求允许的最大文本数。
const maxBatchSize = 100

// GoogleModel 是一个用于 Google GenAI Embedding API 的客户端。
type GoogleModel struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	title  string // 仅在 retrieval_document 任务下发送。
}

// NewGoogleModel 创建并返回一个新的 GoogleModel 客户端实例。
//
// 参数:
//
//	ctx: 上下文，用于创建客户端。
//	apiKey: Google GenAI 的 API 密钥，为空时返回 config.ErrMissingAPIKey。
//	modelName: 要使用的 Embedding 模型名称。
//	taskType: 任务类型，例如 "retrieval_document"。
//	title: 文档标题，仅用于 retrieval_document 任务。
//
// 返回值:
//
//	*GoogleModel: 新创建的 GoogleModel 客户端实例。
//	error: 如果缺少密钥或无法创建 GenAI 客户端，则返回错误。
func NewGoogleModel(ctx context.Context, apiKey, modelName, taskType, title string) (*GoogleModel, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	tt, err := ParseTaskType(taskType)
	if err != nil {
		return nil, err
	}

	// 1. 使用 genai.NewClient 初始化客户端。
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	// 2. 获取指定的 embedding 模型并设置任务类型。
	em := client.EmbeddingModel(modelName)
	em.TaskType = tt

	m := &GoogleModel{client: client, model: em}
	if tt == genai.TaskTypeRetrievalDocument {
		m.title = title
	}
	return m, nil
}

// ParseTaskType 将配置中的任务类型字符串转换为 genai.TaskType。
func ParseTaskType(s string) (genai.TaskType, error) {
	switch s {
	case "":
		return genai.TaskTypeUnspecified, nil
	case "retrieval_document":
		return genai.TaskTypeRetrievalDocument, nil
	case "retrieval_query":
		return genai.TaskTypeRetrievalQuery, nil
	case "semantic_similarity":
		return genai.TaskTypeSemanticSimilarity, nil
	case "classification":
		return genai.TaskTypeClassification, nil
	case "clustering":
		return genai.TaskTypeClustering, nil
	default:
		return genai.TaskTypeUnspecified, fmt.Errorf("unknown embedding task type: %s", s)
	}
}

// Embed 为单个文本生成嵌入向量。
func (m *GoogleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	var (
		res *genai.EmbedContentResponse
		err error
	)
	if m.title != "" {
		res, err = m.model.EmbedContentWithTitle(ctx, m.title, genai.Text(text))
	} else {
		res, err = m.model.EmbedContent(ctx, genai.Text(text))
	}
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("genai returned no embedding")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch 为一批文本生成嵌入向量。
// 超过 maxBatchSize 的输入会被拆成多次请求，结果按输入顺序拼接。
func (m *GoogleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		// 创建一个新的批量嵌入请求。
		batch := m.model.NewBatch()
		for _, text := range texts[start:end] {
			if m.title != "" {
				batch.AddContentWithTitle(m.title, genai.Text(text))
			} else {
				batch.AddContent(genai.Text(text))
			}
		}

		res, err := m.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("genai returned %d embeddings for %d texts", len(res.Embeddings), end-start)
		}
		for _, emb := range res.Embeddings {
			embeddings = append(embeddings, emb.Values)
		}
	}

	return embeddings, nil
}

// Close 释放底层 GenAI 客户端。
func (m *GoogleModel) Close() error {
	return m.client.Close()
}
