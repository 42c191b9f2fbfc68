package middleware

import (
	"net/http"
	"smart-chat-go/pkg/token"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey 是身份中间件写入 gin 上下文的用户 ID 键。
const ContextUserIDKey = "userId"

// OptionalAuth 创建一个可选的 JWT 身份中间件。
// 没有 Authorization 头的请求按匿名处理；携带了 token 但无效时返回 401。
func OptionalAuth(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "无效的授权头格式"})
			return
		}

		claims, err := jwtManager.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "无效或已过期的 token"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserIDFrom 返回身份中间件识别出的用户 ID，匿名请求返回空字符串。
func UserIDFrom(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
