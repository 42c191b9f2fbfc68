package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart-chat-go/internal/config"
	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/llm"
	"smart-chat-go/pkg/media"
	"smart-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedLLM) ChatMessages(context.Context, []llm.Message, *llm.GenerationParams) (string, error) {
	defer func() { s.calls++ }()
	if s.err != nil {
		return "", s.err
	}
	if s.calls < len(s.replies) {
		return s.replies[s.calls], nil
	}
	return "", nil
}

type stubImages struct{ result media.ImageResult }

func (s stubImages) GenerateImage(context.Context, media.ImageRequest) media.ImageResult {
	return s.result
}

type stubVideos struct {
	result media.VideoResult
	status media.VideoResult
}

func (s stubVideos) GenerateVideo(context.Context, media.VideoRequest) media.VideoResult {
	return s.result
}

func (s stubVideos) CheckVideoStatus(_ context.Context, jobID, _ string) media.VideoResult {
	res := s.status
	res.JobID = jobID
	return res
}

type testServer struct {
	router *gin.Engine
	repo   repository.ChatRepository
}

func newTestServer(t *testing.T, llmClient llm.Client, images media.ImageGenerator, videos media.VideoGenerator, jwt *token.JWTManager) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryChatRepository()
	replies := service.NewReplyService(llmClient, config.LLMConfig{})
	mediaSvc := service.NewMediaService(images, videos, nil, time.Minute)
	chatSvc := service.NewChatSessionService(repo, replies, mediaSvc, nil)
	return &testServer{router: NewRouter(chatSvc, mediaSvc, jwt), repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, s *testServer) model.ChatSession {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/chat-sessions", map[string]string{"title": model.DefaultSessionTitle})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.ChatSession](t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)
	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSendMessage_RoundTrip(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{replies: []string{"أهلاً! كيف أساعدك؟", "تحية وترحيب"}}, stubImages{}, stubVideos{}, nil)
	session := createSession(t, s)

	w := s.do(t, http.MethodPost, "/api/chat-sessions/"+session.ID+"/messages", map[string]string{"content": "مرحبا"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ex := decode[model.Exchange](t, w)
	require.NotNil(t, ex.UserMessage)
	require.NotNil(t, ex.AssistantMessage)
	assert.Equal(t, "مرحبا", ex.UserMessage.Content)
	assert.Equal(t, model.RoleAssistant, ex.AssistantMessage.Role)
	assert.Equal(t, "أهلاً! كيف أساعدك؟", ex.AssistantMessage.Content)

	w = s.do(t, http.MethodGet, "/api/chat-sessions/"+session.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]model.Message](t, w)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	w = s.do(t, http.MethodGet, "/api/chat-sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.ChatSession](t, w)
	assert.Equal(t, "تحية وترحيب", got.Title)
	assert.NotEqual(t, session.Title, got.Title)
}

func TestSendMessage_FallbackWhenLLMFails(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{err: errors.New("down")}, stubImages{}, stubVideos{}, nil)
	session := createSession(t, s)

	w := s.do(t, http.MethodPost, "/api/chat-sessions/"+session.ID+"/messages", map[string]string{"content": "ما رأيك؟"})
	require.Equal(t, http.StatusOK, w.Code)
	ex := decode[model.Exchange](t, w)
	assert.NotEmpty(t, ex.AssistantMessage.Content)
}

func TestSendMessage_Validation(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)
	session := createSession(t, s)
	path := "/api/chat-sessions/" + session.ID + "/messages"

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing content", `{}`},
		{"empty content", map[string]string{"content": ""}},
		{"non-text content", `{"content": 42}`},
		{"malformed json", `{"content":`},
		{"unknown personality", map[string]string{"content": "hi", "personality": "pirate"}},
		{"unknown tone", map[string]string{"content": "hi", "tone": "grumpy"}},
		{"custom without prompt", map[string]string{"content": "hi", "personality": "custom"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["message"])
		})
	}

	msgs, err := s.repo.ListMessages(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendMessage_MissingSession(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)
	w := s.do(t, http.MethodPost, "/api/chat-sessions/does-not-exist/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Chat session not found"}`, w.Body.String())

	msgs, err := s.repo.ListMessages(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendMessage_ImageRequest(t *testing.T) {
	images := stubImages{result: media.ImageResult{Success: true, ImageURL: "https://img.example/cat.png", Model: "DALL-E 3"}}
	s := newTestServer(t, &scriptedLLM{replies: []string{"قطة"}}, images, stubVideos{}, nil)
	session := createSession(t, s)

	w := s.do(t, http.MethodPost, "/api/chat-sessions/"+session.ID+"/messages", map[string]string{"content": "ارسم قطة"})
	require.Equal(t, http.StatusOK, w.Code)
	ex := decode[model.Exchange](t, w)
	assert.Equal(t, model.MessageTypeImage, ex.AssistantMessage.MessageType)
	require.NotNil(t, ex.AssistantMessage.MediaURL)
	assert.Equal(t, "https://img.example/cat.png", *ex.AssistantMessage.MediaURL)
}

func TestSessionCRUD(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)

	w := s.do(t, http.MethodPost, "/api/chat-sessions", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	first := createSession(t, s)
	time.Sleep(2 * time.Millisecond)
	second := createSession(t, s)

	w = s.do(t, http.MethodGet, "/api/chat-sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.ChatSession](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	w = s.do(t, http.MethodPatch, "/api/chat-sessions/"+first.ID, map[string]string{"title": "عنوان جديد"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "عنوان جديد", decode[model.ChatSession](t, w).Title)

	w = s.do(t, http.MethodPatch, "/api/chat-sessions/missing", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/chat-sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/chat-sessions/"+first.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/chat-sessions/"+first.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Chat session deleted successfully"}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/chat-sessions/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsScopedByToken(t *testing.T) {
	jwt := token.NewJWTManager("secret", 1)
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, jwt)

	alice, err := jwt.GenerateToken("alice", 0)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/chat-sessions", map[string]string{"title": "mine", "userId": "mallory"}, "Authorization", "Bearer "+alice)
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[model.ChatSession](t, w)
	require.NotNil(t, created.UserID)
	assert.Equal(t, "alice", *created.UserID)

	createSession(t, s) // 匿名会话

	w = s.do(t, http.MethodGet, "/api/chat-sessions", nil, "Authorization", "Bearer "+alice)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.ChatSession](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = s.do(t, http.MethodGet, "/api/chat-sessions", nil, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
