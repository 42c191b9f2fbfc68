package service

import (
	"context"
	"fmt"
	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/pkg/log"
	"smart-chat-go/pkg/media"
	"strings"
	"time"
)

// EventPublisher 发布聊天生命周期事件。
type EventPublisher interface {
	Publish(ctx context.Context, event model.ChatEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, model.ChatEvent) error { return nil }

// SendMessageInput 是发送消息所需的参数。Persona 与 Tone 为原始字符串，由服务负责校验。
type SendMessageInput struct {
	SessionID     string
	Content       string
	Persona       string
	CustomPersona string
	Tone          string
}

// ChatSessionService 定义了会话与消息的业务接口。
type ChatSessionService interface {
	ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error)
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	CreateSession(ctx context.Context, title string, userID *string) (*model.ChatSession, error)
	RenameSession(ctx context.Context, id, title string) (*model.ChatSession, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	ClearMessages(ctx context.Context, sessionID string) (bool, error)
	SendMessage(ctx context.Context, in SendMessageInput) (*model.Exchange, error)
}

type chatSessionService struct {
	repo      repository.ChatRepository
	replies   ReplyService
	media     MediaService
	publisher EventPublisher
	now       func() time.Time
}

// NewChatSessionService 创建一个新的 ChatSessionService。publisher 为 nil 时不发布事件。
func NewChatSessionService(repo repository.ChatRepository, replies ReplyService, mediaSvc MediaService, publisher EventPublisher) ChatSessionService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &chatSessionService{
		repo:      repo,
		replies:   replies,
		media:     mediaSvc,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *chatSessionService) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *chatSessionService) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *chatSessionService) CreateSession(ctx context.Context, title string, userID *string) (*model.ChatSession, error) {
	session, err := s.repo.CreateSession(ctx, title, userID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, model.ChatEvent{Type: model.EventSessionCreated, SessionID: session.ID})
	return session, nil
}

func (s *chatSessionService) RenameSession(ctx context.Context, id, title string) (*model.ChatSession, error) {
	return s.repo.UpdateSession(ctx, id, model.ChatSessionUpdate{Title: &title})
}

func (s *chatSessionService) DeleteSession(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteSession(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.publish(ctx, model.ChatEvent{Type: model.EventSessionDeleted, SessionID: id})
	return true, nil
}

func (s *chatSessionService) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	return s.repo.ListMessages(ctx, sessionID)
}

func (s *chatSessionService) ClearMessages(ctx context.Context, sessionID string) (bool, error) {
	return s.repo.DeleteMessages(ctx, sessionID)
}

// SendMessage 保存用户消息，按意图生成文本、图片或视频回复并保存，首条消息时生成会话标题。
// 各步骤之间没有事务：用户消息一旦保存，后续失败也不会回滚。
func (s *chatSessionService) SendMessage(ctx context.Context, in SendMessageInput) (*model.Exchange, error) {
	persona, err := model.ParsePersona(in.Persona)
	if err != nil {
		return nil, err
	}
	tone, err := model.ParseTone(in.Tone)
	if err != nil {
		return nil, err
	}
	if persona == model.PersonaCustom && strings.TrimSpace(in.CustomPersona) == "" {
		return nil, model.ErrCustomPersonaRequired
	}

	if _, err := s.repo.GetSession(ctx, in.SessionID); err != nil {
		return nil, err
	}

	userMessage, err := s.repo.CreateMessage(ctx, model.NewMessage{
		ChatSessionID: in.SessionID,
		Content:       in.Content,
		Role:          model.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	all, err := s.repo.ListMessages(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]model.Message, 0, len(all))
	for _, m := range all {
		if m.ID != userMessage.ID {
			history = append(history, m)
		}
	}

	intent := ClassifyIntent(in.Content)
	var reply model.NewMessage
	switch intent {
	case IntentImage:
		reply = s.imageReply(ctx, in.Content)
	case IntentVideo:
		reply = s.videoReply(ctx, in.Content)
	default:
		reply = model.NewMessage{
			Content: s.replies.GenerateReply(ctx, ReplyRequest{
				Message:       in.Content,
				History:       history,
				Persona:       persona,
				CustomPersona: in.CustomPersona,
				Tone:          tone,
			}),
		}
	}
	reply.ChatSessionID = in.SessionID
	reply.Role = model.RoleAssistant

	assistantMessage, err := s.repo.CreateMessage(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if len(history) == 0 {
		title := s.replies.GenerateTitle(ctx, in.Content)
		if _, err := s.repo.UpdateSession(ctx, in.SessionID, model.ChatSessionUpdate{Title: &title}); err != nil {
			return nil, fmt.Errorf("failed to update session title: %w", err)
		}
	}

	if _, err := s.repo.UpdateSession(ctx, in.SessionID, model.ChatSessionUpdate{}); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	s.publish(ctx, model.ChatEvent{
		Type:        model.EventMessageExchanged,
		SessionID:   in.SessionID,
		MessageID:   assistantMessage.ID,
		Intent:      string(intent),
		MessageType: assistantMessage.MessageType,
	})

	return &model.Exchange{UserMessage: userMessage, AssistantMessage: assistantMessage}, nil
}

func (s *chatSessionService) imageReply(ctx context.Context, content string) model.NewMessage {
	prompt := ExtractImagePrompt(content)
	res := s.media.GenerateImage(ctx, media.ImageRequest{Prompt: prompt})
	if !res.Success || res.ImageURL == "" {
		log.Warnw("图片生成失败，返回文本说明", "prompt", prompt, "error", res.Error)
		return model.NewMessage{Content: strings.TrimSpace("عذراً، لم أتمكن من إنشاء الصورة. " + res.Error)}
	}
	return model.NewMessage{
		Content:     fmt.Sprintf("تم إنشاء الصورة بنجاح باستخدام %s 🎨", res.Model),
		MessageType: model.MessageTypeImage,
		MediaURL:    &res.ImageURL,
		MediaPrompt: &prompt,
	}
}

func (s *chatSessionService) videoReply(ctx context.Context, content string) model.NewMessage {
	prompt := ExtractVideoPrompt(content)
	res := s.media.GenerateVideo(ctx, media.VideoRequest{Prompt: prompt})
	switch {
	case res.Success && res.VideoURL != "":
		return model.NewMessage{
			Content:     fmt.Sprintf("تم إنشاء الفيديو بنجاح باستخدام %s 🎬", res.Model),
			MessageType: model.MessageTypeVideo,
			MediaURL:    &res.VideoURL,
			MediaPrompt: &prompt,
		}
	case res.Success && res.JobID != "":
		// 异步任务：消息中不带 URL，客户端通过 jobId 轮询 /video-status
		return model.NewMessage{
			Content:     fmt.Sprintf("جاري إنشاء الفيديو باستخدام %s. معرف المهمة: %s", res.Model, res.JobID),
			MessageType: model.MessageTypeVideo,
			MediaPrompt: &prompt,
		}
	default:
		log.Warnw("视频生成失败，返回文本说明", "prompt", prompt, "error", res.Error)
		return model.NewMessage{Content: strings.TrimSpace("عذراً، لم أتمكن من إنشاء الفيديو. " + res.Error)}
	}
}

// publish 失败只记录日志，不影响请求结果。
func (s *chatSessionService) publish(ctx context.Context, event model.ChatEvent) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warnw("发布聊天事件失败", "type", event.Type, "sessionId", event.SessionID, "error", err)
	}
}
