package user

import (
	"net/http"
	"strings"

	"github.com/SlpAus/habit-tracker-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey 是认证中间件写入Gin上下文的键名。
	UserIDKey = "userID"
	// ClaimsKey 是认证中间件写入Gin上下文的令牌claims键名。
	ClaimsKey = "authClaims"
)

// RequireAuthMiddleware 解析并验证Authorization头中的Bearer令牌。
// 验证通过后，将用户ID和令牌claims放入Gin上下文；否则以401中止请求。
func RequireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
			return
		}

		claims, err := token.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证令牌无效或已过期"})
			return
		}

		revoked, err := IsTokenRevoked(claims.TokenID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法校验令牌状态"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证令牌已登出"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentUserID 从Gin上下文中取出认证中间件写入的用户ID。
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
