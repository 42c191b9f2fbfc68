// Package model 包含了应用的数据模型定义。
package model

import "time"

// MessageRole 表示消息的发送方。
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// MessageType 表示消息携带的内容类型。
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
)

// DefaultSessionTitle 是新会话以及标题生成失败时使用的标题。
const DefaultSessionTitle = "محادثة جديدة"

// ChatSession 代表一个会话线程。
type ChatSession struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    *string   `gorm:"type:varchar(64);index" json:"userId"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:datetime(6);not null;index" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatSessionUpdate 描述对会话的部分更新，nil 字段保持不变。
// UpdatedAt 总是由存储层刷新。
type ChatSessionUpdate struct {
	Title  *string
	UserID *string
}

// Message 代表会话中的单条消息，创建后不可修改。
type Message struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	ChatSessionID string      `gorm:"type:varchar(36);not null;index" json:"chatSessionId"`
	Content       string      `gorm:"type:text;not null" json:"content"`
	Role          MessageRole `gorm:"type:varchar(16);not null" json:"role"`
	MessageType   MessageType `gorm:"type:varchar(16);not null;default:text" json:"messageType"`
	MediaURL      *string     `gorm:"type:text" json:"mediaUrl"`
	MediaPrompt   *string     `gorm:"type:text" json:"mediaPrompt"`
	CreatedAt     time.Time   `gorm:"type:datetime(6);not null;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// NewMessage 是创建消息时由调用方提供的字段。
type NewMessage struct {
	ChatSessionID string
	Content       string
	Role          MessageRole
	MessageType   MessageType // 为空时默认为 text
	MediaURL      *string
	MediaPrompt   *string
}

// Exchange 是一次发送消息请求的结果：用户消息与助手回复。
type Exchange struct {
	UserMessage      *Message `json:"userMessage"`
	AssistantMessage *Message `json:"assistantMessage"`
}
