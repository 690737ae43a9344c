package models

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser  SpeakerRole = "user"  // 用户角色。
	SpeakerModel SpeakerRole = "model" // 模型角色。
)

// Part 是消息中的一个文本片段。
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content 包含了构成单个消息的多个部分。
type Content struct {
	Parts []*Part     `json:"parts,omitempty"`
	Role  SpeakerRole `json:"role,omitempty"`
}

// Text 按顺序拼接所有文本片段。
func (c Content) Text() string {
	var out string
	for _, p := range c.Parts {
		if p != nil {
			out += p.Text
		}
	}
	return out
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	Content []Content `json:"content,omitempty"`
}

// NewTextRequest 用单个用户文本构造请求。
func NewTextRequest(prompt string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Content: []Content{{Role: SpeakerUser, Parts: []*Part{{Text: prompt}}}},
	}
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`      // 每个候选答案一项。
	ModelVersion string    `json:"modelVersion,omitempty"` // 模型版本。
}
