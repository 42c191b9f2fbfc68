package handler

import (
	"net/http"
	"smart-chat-go/internal/middleware"
	"smart-chat-go/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
)

// ChatSessionHandler 处理会话与消息相关的 API 请求。
type ChatSessionHandler struct {
	service service.ChatSessionService
}

// NewChatSessionHandler 创建一个新的 ChatSessionHandler。
func NewChatSessionHandler(service service.ChatSessionService) *ChatSessionHandler {
	return &ChatSessionHandler{service: service}
}

type createSessionRequest struct {
	Title  string  `json:"title" binding:"required"`
	UserID *string `json:"userId"`
}

type renameSessionRequest struct {
	Title string `json:"title" binding:"required"`
}

type sendMessageRequest struct {
	Content           string `json:"content" binding:"required"`
	Personality       string `json:"personality"`
	Tone              string `json:"tone"`
	CustomPersonality string `json:"customPersonality"`
}

// ListSessions 返回按最近更新排序的会话列表；已识别身份的请求只返回自己的会话。
func (h *ChatSessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch chat sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSession 创建新会话。
func (h *ChatSessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		abortWithMessage(c, http.StatusBadRequest, "Invalid chat session data")
		return
	}
	// token 中的身份优先于请求体
	userID := req.UserID
	if uid := middleware.UserIDFrom(c); uid != "" {
		userID = &uid
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.Title, userID)
	if err != nil {
		respondError(c, err, "Failed to create chat session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession 返回单个会话。
func (h *ChatSessionHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch chat session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// RenameSession 修改会话标题。
func (h *ChatSessionHandler) RenameSession(c *gin.Context) {
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		abortWithMessage(c, http.StatusBadRequest, "Title is required")
		return
	}
	session, err := h.service.RenameSession(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Title))
	if err != nil {
		respondError(c, err, "Failed to update chat session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession 删除会话及其全部消息。
func (h *ChatSessionHandler) DeleteSession(c *gin.Context) {
	deleted, err := h.service.DeleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete chat session")
		return
	}
	if !deleted {
		abortWithMessage(c, http.StatusNotFound, "Chat session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat session deleted successfully"})
}

// ListMessages 返回会话内按时间排序的消息。
func (h *ChatSessionHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ClearMessages 清空会话消息，保留会话本身。
func (h *ChatSessionHandler) ClearMessages(c *gin.Context) {
	deleted, err := h.service.ClearMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SendMessage 发送消息并返回用户消息与助手回复。
func (h *ChatSessionHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		abortWithMessage(c, http.StatusBadRequest, "Message content is required")
		return
	}

	exchange, err := h.service.SendMessage(c.Request.Context(), service.SendMessageInput{
		SessionID:     c.Param("id"),
		Content:       req.Content,
		Persona:       req.Personality,
		CustomPersona: req.CustomPersonality,
		Tone:          req.Tone,
	})
	if err != nil {
		respondError(c, err, "Failed to process message")
		return
	}
	c.JSON(http.StatusOK, exchange)
}
