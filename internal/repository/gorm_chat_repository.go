package repository

import (
	"context"
	"errors"
	"fmt"
	"smart-chat-go/internal/model"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormChatRepository 是 ChatRepository 接口的 GORM 实现。
type gormChatRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormChatRepository 创建一个新的基于 GORM 的 ChatRepository 实例。
func NewGormChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db, now: time.Now}
}

// AutoMigrate 创建或更新 chat_sessions 与 messages 表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.ChatSession{}, &model.Message{})
}

func (r *gormChatRepository) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	sessions := []model.ChatSession{}
	q := r.db.WithContext(ctx).Order("updated_at DESC").Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *gormChatRepository) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	var s model.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *gormChatRepository) CreateSession(ctx context.Context, title string, userID *string) (*model.ChatSession, error) {
	now := r.now()
	s := &model.ChatSession{
		ID:        uuid.NewString(),
		UserID:    copyUserID(userID),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (r *gormChatRepository) UpdateSession(ctx context.Context, id string, update model.ChatSessionUpdate) (*model.ChatSession, error) {
	s, err := r.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(s, update, r.now())
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return s, nil
}

func (r *gormChatRepository) DeleteSession(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.ChatSession{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if !deleted {
			return nil
		}
		return tx.Where("chat_session_id = ?", id).Delete(&model.Message{}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return deleted, nil
}

func (r *gormChatRepository) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	msgs := []model.Message{}
	err := r.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (r *gormChatRepository) CreateMessage(ctx context.Context, msg model.NewMessage) (*model.Message, error) {
	m := buildMessage(uuid.NewString(), msg, r.now())
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &m, nil
}

func (r *gormChatRepository) DeleteMessages(ctx context.Context, sessionID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("chat_session_id = ?", sessionID).Delete(&model.Message{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete messages: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
