// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"smart-chat-go/internal/model"
	"smart-chat-go/internal/repository"
	"smart-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 所有错误响应的形状都是 {"message": "..."}
func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// respondError 把业务错误映射为 HTTP 状态码：校验错误 400，会话不存在 404，其余 500。
// 500 时只返回 internalMessage，完整错误写入日志。
func respondError(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		abortWithMessage(c, http.StatusNotFound, "Chat session not found")
	case errors.Is(err, model.ErrInvalidPersona),
		errors.Is(err, model.ErrInvalidTone),
		errors.Is(err, model.ErrCustomPersonaRequired):
		abortWithMessage(c, http.StatusBadRequest, err.Error())
	default:
		log.Errorw(internalMessage, "path", c.Request.URL.Path, "error", err)
		abortWithMessage(c, http.StatusInternalServerError, internalMessage)
	}
}
