package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"smart-chat-go/internal/config"
	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM 记录每次调用并按顺序返回预设结果。
type fakeLLM struct {
	mu      sync.Mutex
	calls   [][]llm.Message
	params  []*llm.GenerationParams
	replies []string
	errs    []error
}

func (f *fakeLLM) ChatMessages(_ context.Context, messages []llm.Message, gen *llm.GenerationParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.calls)
	f.calls = append(f.calls, messages)
	f.params = append(f.params, gen)
	var reply string
	var err error
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return reply, err
}

func TestBuildSystemPrompt(t *testing.T) {
	plain := BuildSystemPrompt(model.PersonaDefault, "", model.ToneNone)
	assert.Equal(t, BasePersona, plain)

	teacher := BuildSystemPrompt(model.PersonaTeacher, "ignored", model.ToneConcise)
	assert.True(t, strings.HasPrefix(teacher, BasePersona))
	assert.Contains(t, teacher, personaTemplates[model.PersonaTeacher])
	assert.Contains(t, teacher, toneTemplates[model.ToneConcise])
	assert.NotContains(t, teacher, "ignored")

	custom := BuildSystemPrompt(model.PersonaCustom, "  أنت قرصان  ", model.ToneNone)
	assert.Equal(t, BasePersona+"\n\nأنت قرصان", custom)
}

func TestBuildChatMessages(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "q1"},
		{Role: model.RoleAssistant, Content: "a1"},
	}
	msgs := BuildChatMessages("sys", history, "q2")
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.Message{Role: "system", Content: "sys"}, msgs[0])
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, llm.Message{Role: "user", Content: "q2"}, msgs[3])
}

func TestFallbackReply(t *testing.T) {
	now := time.Date(2025, 3, 4, 9, 30, 15, 0, time.UTC)

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"greeting", "مرحبا يا صديقي", "مرحباً بك"},
		{"time", "كم الساعة الآن؟", "09:30:15"},
		{"weather", "كيف الطقس اليوم", "الطقس"},
		{"help", "ممكن مساعدة", "أنا هنا لمساعدتك"},
		{"thanks", "أشكرك جدا", "عفواً"},
		{"math", "2 + 2", "العمليات الحسابية"},
		{"programming", "Python question", "البرمجة"},
		{"farewell", "باي", "إلى اللقاء"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, FallbackReply(tc.message, now, nil), tc.contains)
		})
	}
}

func TestFallbackReply_DefaultNeverEmpty(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		reply := FallbackReply("xyz", time.Now(), rnd)
		assert.NotEmpty(t, reply)
		assert.Contains(t, defaultFallbackReplies, reply)
	}
	assert.NotEmpty(t, FallbackReply("", time.Now(), nil))
}

func TestReplyService_GenerateReply(t *testing.T) {
	fake := &fakeLLM{replies: []string{"  جواب  "}}
	svc := NewReplyService(fake, config.LLMConfig{})

	history := []model.Message{{Role: model.RoleUser, Content: "q1"}, {Role: model.RoleAssistant, Content: "a1"}}
	out := svc.GenerateReply(context.Background(), ReplyRequest{
		Message: "q2",
		History: history,
		Persona: model.PersonaProgrammer,
		Tone:    model.ToneFriendly,
	})
	assert.Equal(t, "جواب", out)

	require.Len(t, fake.calls, 1)
	sent := fake.calls[0]
	require.Len(t, sent, 4)
	assert.Contains(t, sent[0].Content, personaTemplates[model.PersonaProgrammer])
	assert.Equal(t, "q2", sent[3].Content)
}

func TestReplyService_GenerateReplyFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"api error", "", errors.New("boom")},
		{"blank reply", "   ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeLLM{replies: []string{tc.reply}, errs: []error{tc.err}}
			svc := NewReplyService(fake, config.LLMConfig{})
			out := svc.GenerateReply(context.Background(), ReplyRequest{Message: "مرحبا"})
			assert.Equal(t, "مرحباً بك! أهلاً وسهلاً، كيف يمكنني مساعدتك اليوم؟", out)
		})
	}
}

func TestReplyService_GenerateTitle(t *testing.T) {
	cfg := config.LLMConfig{Title: config.LLMGenerationConfig{MaxTokens: 20}}

	fake := &fakeLLM{replies: []string{" \"رحلة إلى البحر\" "}}
	svc := NewReplyService(fake, cfg)
	assert.Equal(t, "رحلة إلى البحر", svc.GenerateTitle(context.Background(), "أريد السفر إلى البحر"))
	require.NotNil(t, fake.params[0])
	assert.Equal(t, 20, *fake.params[0].MaxTokens)
	assert.Equal(t, titlePrompt, fake.calls[0][0].Content)

	failing := NewReplyService(&fakeLLM{errs: []error{errors.New("down")}}, cfg)
	assert.Equal(t, model.DefaultSessionTitle, failing.GenerateTitle(context.Background(), "x"))

	blank := NewReplyService(&fakeLLM{replies: []string{"\"\""}}, cfg)
	assert.Equal(t, model.DefaultSessionTitle, blank.GenerateTitle(context.Background(), "x"))
}
