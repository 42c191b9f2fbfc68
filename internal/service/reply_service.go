package service

import (
	"context"
	"smart-chat-go/internal/config"
	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/llm"
	"smart-chat-go/pkg/log"
	"strings"
	"time"
)

const titlePrompt = "أنشئ عنواناً قصيراً (لا يزيد عن 5 كلمات) للمحادثة بناءً على الرسالة الأولى. العنوان يجب أن يكون باللغة العربية ووصفياً."

// ReplyRequest 描述一次文本回复所需的全部输入。
type ReplyRequest struct {
	Message       string
	History       []model.Message
	Persona       model.Persona
	CustomPersona string
	Tone          model.Tone
}

// ReplyService 负责生成文本回复与会话标题，调用失败时降级为预设回复，从不返回错误。
type ReplyService interface {
	GenerateReply(ctx context.Context, req ReplyRequest) string
	GenerateTitle(ctx context.Context, firstMessage string) string
}

type replyService struct {
	llmClient   llm.Client
	titleParams *llm.GenerationParams
	now         func() time.Time
}

// NewReplyService 创建一个新的 ReplyService。
func NewReplyService(llmClient llm.Client, cfg config.LLMConfig) ReplyService {
	return &replyService{
		llmClient:   llmClient,
		titleParams: llm.ParamsFromConfig(cfg.Title),
		now:         time.Now,
	}
}

// GenerateReply 组装提示词并调用 LLM；任何失败或空回复都会返回关键词匹配的预设回复。
func (s *replyService) GenerateReply(ctx context.Context, req ReplyRequest) string {
	system := BuildSystemPrompt(req.Persona, req.CustomPersona, req.Tone)
	messages := BuildChatMessages(system, req.History, req.Message)

	answer, err := s.llmClient.ChatMessages(ctx, messages, nil)
	if err != nil {
		log.Errorf("[ReplyService] LLM 调用失败，使用预设回复: %v", err)
		return FallbackReply(req.Message, s.now(), nil)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		log.Warnf("[ReplyService] LLM 返回空内容，使用预设回复")
		return FallbackReply(req.Message, s.now(), nil)
	}
	return answer
}

// GenerateTitle 根据首条用户消息生成简短标题，失败时返回默认标题。
func (s *replyService) GenerateTitle(ctx context.Context, firstMessage string) string {
	messages := []llm.Message{
		{Role: "system", Content: titlePrompt},
		{Role: "user", Content: firstMessage},
	}
	title, err := s.llmClient.ChatMessages(ctx, messages, s.titleParams)
	if err != nil {
		log.Warnf("[ReplyService] 生成会话标题失败: %v", err)
		return model.DefaultSessionTitle
	}
	title = cleanTitle(title)
	if title == "" {
		return model.DefaultSessionTitle
	}
	return title
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'“”«»")
	return strings.TrimSpace(s)
}
