package llm

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/models"
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都是独立的单轮生成，不保留聊天上下文。
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel // Gemini 生成模型实例。
}

// NewGemini 创建一个新的 Gemini 客户端。
//
// 参数:
//
//	ctx: 上下文，用于控制客户端的生命周期。
//	model: 要使用的 Gemini 模型名称，为空时使用 config.DefaultGenerationModel。
//	apiKey: Gemini API 密钥，为空时返回 config.ErrMissingAPIKey。
//
// 返回值:
//
//	*Gemini: 新创建的 Gemini 客户端实例。
//	error: 如果缺少密钥或无法创建 GenAI 客户端，则返回错误。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	if model == "" {
		model = config.DefaultGenerationModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// GenerateContent 向 Gemini API 发送请求并返回响应。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := g.model.GenerateContent(ctx, toGenaiParts(req.Content)...)
	if err != nil {
		return nil, err
	}

	out := fromGenaiResponse(resp)
	if len(out.Content) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}

// Close 释放底层 GenAI 客户端。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// toGenaiParts 将内部 Content 结构体转换为 GenAI Part 切片，只保留非空文本。
func toGenaiParts(content []models.Content) []genai.Part {
	var parts []genai.Part
	for _, c := range content {
		for _, p := range c.Parts {
			if p != nil && p.Text != "" {
				parts = append(parts, genai.Text(p.Text))
			}
		}
	}
	return parts
}

// fromGenaiResponse 将 GenAI 响应转换为内部响应结构体，每个候选答案对应一个 Content。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		out.Content = append(out.Content, fromGenaiContent(cand.Content))
	}
	return out
}

// fromGenaiContent 将 GenAI Content 转换为内部 Content，非文本部分会被忽略。
func fromGenaiContent(content *genai.Content) models.Content {
	var parts []*models.Part
	for _, p := range content.Parts {
		if text, ok := p.(genai.Text); ok {
			parts = append(parts, &models.Part{Text: string(text)})
		}
	}
	return models.Content{
		Parts: parts,
		Role:  models.SpeakerRole(content.Role),
	}
}
