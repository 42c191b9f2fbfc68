package model

import "time"

// ChatEventType 标识聊天生命周期事件。
type ChatEventType string

const (
	EventSessionCreated   ChatEventType = "session.created"
	EventSessionDeleted   ChatEventType = "session.deleted"
	EventMessageExchanged ChatEventType = "message.exchanged"
)

// ChatEvent 是发布到消息队列的聊天事件。
type ChatEvent struct {
	Type        ChatEventType `json:"type"`
	SessionID   string        `json:"sessionId"`
	MessageID   string        `json:"messageId,omitempty"`
	Intent      string        `json:"intent,omitempty"`
	MessageType MessageType   `json:"messageType,omitempty"`
	OccurredAt  time.Time     `json:"occurredAt"`
}
