// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"smart-chat-go/internal/model"
	"time"
)

// ErrSessionNotFound 表示会话不存在。调用方应按 not-found 处理，而不是崩溃。
var ErrSessionNotFound = errors.New("chat session not found")

// ChatRepository 定义了会话与消息的持久化操作。
// 每个操作本身是原子的，跨操作不提供事务保证。
type ChatRepository interface {
	// ListSessions 按 updatedAt 降序返回会话；userID 非空时只返回该用户的会话。
	ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error)
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	CreateSession(ctx context.Context, title string, userID *string) (*model.ChatSession, error)
	// UpdateSession 合并非 nil 字段并总是刷新 updatedAt。
	UpdateSession(ctx context.Context, id string, update model.ChatSessionUpdate) (*model.ChatSession, error)
	// DeleteSession 删除会话并级联删除其消息，返回是否发生了删除。
	DeleteSession(ctx context.Context, id string) (bool, error)

	// ListMessages 按创建时间升序返回会话的消息，没有消息时返回空切片。
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	CreateMessage(ctx context.Context, msg model.NewMessage) (*model.Message, error)
	DeleteMessages(ctx context.Context, sessionID string) (bool, error)
}

// applyUpdate 合并部分字段并刷新 updatedAt，保证 updatedAt 不早于 createdAt。
func applyUpdate(s *model.ChatSession, update model.ChatSessionUpdate, now time.Time) {
	if update.Title != nil {
		s.Title = *update.Title
	}
	if update.UserID != nil {
		uid := *update.UserID
		s.UserID = &uid
	}
	if now.Before(s.CreatedAt) {
		now = s.CreatedAt
	}
	s.UpdatedAt = now
}

// buildMessage 填充生成字段和默认值。
func buildMessage(id string, msg model.NewMessage, now time.Time) model.Message {
	msgType := msg.MessageType
	if msgType == "" {
		msgType = model.MessageTypeText
	}
	return model.Message{
		ID:            id,
		ChatSessionID: msg.ChatSessionID,
		Content:       msg.Content,
		Role:          msg.Role,
		MessageType:   msgType,
		MediaURL:      msg.MediaURL,
		MediaPrompt:   msg.MediaPrompt,
		CreatedAt:     now,
	}
}

func copyUserID(userID *string) *string {
	if userID == nil || *userID == "" {
		return nil
	}
	uid := *userID
	return &uid
}
