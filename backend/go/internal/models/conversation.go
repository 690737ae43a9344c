package models

import "time"

// ConversationEntry 是会话历史中的一问一答。
type ConversationEntry struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AskedAt    time.Time `json:"asked_at"`
	Collection string    `json:"collection"` // 回答时使用的集合名称。
}
