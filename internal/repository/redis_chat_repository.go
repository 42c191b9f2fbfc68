package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"smart-chat-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionsIndexKey = "chat:sessions"

func sessionKey(id string) string {
	return fmt.Sprintf("chat:session:%s", id)
}

func messagesKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s:messages", sessionID)
}

type redisChatRepository struct {
	redisClient *redis.Client
	now         func() time.Time
}

// NewRedisChatRepository 创建一个基于 Redis 的 ChatRepository。
// 会话以 JSON 存储，chat:sessions 有序集合按 updatedAt 索引，消息按 RPUSH 顺序保存在列表中。
func NewRedisChatRepository(redisClient *redis.Client) ChatRepository {
	return &redisChatRepository{redisClient: redisClient, now: time.Now}
}

func (r *redisChatRepository) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	ids, err := r.redisClient.ZRevRange(ctx, sessionsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session ids: %w", err)
	}
	sessions := make([]model.ChatSession, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// 索引与数据之间存在删除窗口，跳过已消失的会话
			continue
		}
		var s model.ChatSession
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		if userID != "" && (s.UserID == nil || *s.UserID != userID) {
			continue
		}
		sessions = append(sessions, s)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (r *redisChatRepository) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	raw, err := r.redisClient.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var s model.ChatSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *redisChatRepository) CreateSession(ctx context.Context, title string, userID *string) (*model.ChatSession, error) {
	now := r.now()
	s := &model.ChatSession{
		ID:        uuid.NewString(),
		UserID:    copyUserID(userID),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.saveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *redisChatRepository) UpdateSession(ctx context.Context, id string, update model.ChatSessionUpdate) (*model.ChatSession, error) {
	s, err := r.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	// 读-改-写没有跨请求隔离，并发更新按最后写入为准
	applyUpdate(s, update, r.now())
	if err := r.saveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *redisChatRepository) saveSession(ctx context.Context, s *model.ChatSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), data, 0)
		pipe.ZAdd(ctx, sessionsIndexKey, &redis.Z{Score: float64(s.UpdatedAt.UnixMicro()), Member: s.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisChatRepository) DeleteSession(ctx context.Context, id string) (bool, error) {
	var deleted *redis.IntCmd
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, sessionKey(id))
		pipe.Del(ctx, messagesKey(id))
		pipe.ZRem(ctx, sessionsIndexKey, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return deleted.Val() > 0, nil
}

func (r *redisChatRepository) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	items, err := r.redisClient.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	msgs := make([]model.Message, 0, len(items))
	for _, item := range items {
		var m model.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *redisChatRepository) CreateMessage(ctx context.Context, msg model.NewMessage) (*model.Message, error) {
	m := buildMessage(uuid.NewString(), msg, r.now())
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := r.redisClient.RPush(ctx, messagesKey(msg.ChatSessionID), data).Err(); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return &m, nil
}

func (r *redisChatRepository) DeleteMessages(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.redisClient.Del(ctx, messagesKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete messages: %w", err)
	}
	return n > 0, nil
}
