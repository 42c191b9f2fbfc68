package repository

import (
	"context"
	"smart-chat-go/internal/model"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryChatRepository 是 ChatRepository 的内存实现，进程重启后数据丢失。
type memoryChatRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.ChatSession
	// 每个会话的消息按插入顺序保存，天然满足创建时间升序
	messages map[string][]model.Message
	now      func() time.Time
}

// NewMemoryChatRepository 创建一个新的内存 ChatRepository。
func NewMemoryChatRepository() ChatRepository {
	return newMemoryChatRepository(time.Now)
}

func newMemoryChatRepository(now func() time.Time) *memoryChatRepository {
	return &memoryChatRepository{
		sessions: make(map[string]model.ChatSession),
		messages: make(map[string][]model.Message),
		now:      now,
	}
}

func (r *memoryChatRepository) ListSessions(_ context.Context, userID string) ([]model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]model.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		if userID != "" && (s.UserID == nil || *s.UserID != userID) {
			continue
		}
		sessions = append(sessions, s)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (r *memoryChatRepository) GetSession(_ context.Context, id string) (*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *memoryChatRepository) CreateSession(_ context.Context, title string, userID *string) (*model.ChatSession, error) {
	now := r.now()
	s := model.ChatSession{
		ID:        uuid.NewString(),
		UserID:    copyUserID(userID),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return &s, nil
}

func (r *memoryChatRepository) UpdateSession(_ context.Context, id string, update model.ChatSessionUpdate) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	applyUpdate(&s, update, r.now())
	r.sessions[id] = s
	return &s, nil
}

func (r *memoryChatRepository) DeleteSession(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	delete(r.messages, id)
	return true, nil
}

func (r *memoryChatRepository) ListMessages(_ context.Context, sessionID string) ([]model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := make([]model.Message, len(r.messages[sessionID]))
	copy(msgs, r.messages[sessionID])
	return msgs, nil
}

func (r *memoryChatRepository) CreateMessage(_ context.Context, msg model.NewMessage) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := buildMessage(uuid.NewString(), msg, r.now())
	existing := r.messages[msg.ChatSessionID]
	// 时钟回拨时保持非递减顺序
	if n := len(existing); n > 0 && m.CreatedAt.Before(existing[n-1].CreatedAt) {
		m.CreatedAt = existing[n-1].CreatedAt
	}
	r.messages[msg.ChatSessionID] = append(existing, m)
	return &m, nil
}

func (r *memoryChatRepository) DeleteMessages(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.messages[sessionID])
	delete(r.messages, sessionID)
	return n > 0, nil
}

// sortSessions 按 updatedAt 降序排序，相同时间按 createdAt 降序。
func sortSessions(sessions []model.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
