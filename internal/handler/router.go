package handler

import (
	"net/http"
	"smart-chat-go/internal/middleware"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// NewRouter 创建路由引擎并注册全部 API。jwtManager 为 nil 时不启用身份识别。
func NewRouter(chatService service.ChatSessionService, mediaService service.MediaService, jwtManager *token.JWTManager) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if jwtManager != nil {
		api.Use(middleware.OptionalAuth(jwtManager))
	}

	sessions := NewChatSessionHandler(chatService)
	chat := api.Group("/chat-sessions")
	{
		chat.GET("", sessions.ListSessions)
		chat.POST("", sessions.CreateSession)
		chat.GET("/:id", sessions.GetSession)
		chat.PATCH("/:id", sessions.RenameSession)
		chat.DELETE("/:id", sessions.DeleteSession)
		chat.GET("/:id/messages", sessions.ListMessages)
		chat.POST("/:id/messages", sessions.SendMessage)
		chat.DELETE("/:id/messages", sessions.ClearMessages)
	}

	mediaHandler := NewMediaHandler(mediaService)
	api.POST("/generate-image", mediaHandler.GenerateImage)
	api.POST("/generate-video", mediaHandler.GenerateVideo)
	api.GET("/video-status/:jobId", mediaHandler.VideoStatus)

	return r
}
