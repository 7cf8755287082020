package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"Confizz/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextUserIDKey = "user_id"

var errBadAuthHeader = errors.New("invalid authorization format")

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (uint64, error)
}

// AuthMiddleware 必须登录：Bearer 头优先，其次 session cookie
func AuthMiddleware(auth Authenticator, sessions *pkg.SessionManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c, sessions)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "login required"})
			return
		}
		if !authenticate(c, auth, token, logger) {
			return
		}
		c.Next()
	}
}

// OptionalAuth 没带凭证按匿名处理；带了但无效仍然 401
func OptionalAuth(auth Authenticator, sessions *pkg.SessionManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c, sessions)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}
		if token != "" && !authenticate(c, auth, token, logger) {
			return
		}
		c.Next()
	}
}

// UserID 未登录返回 0
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}

func extractToken(c *gin.Context, sessions *pkg.SessionManager) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errBadAuthHeader
		}
		return parts[1], nil
	}
	if sessions == nil {
		return "", nil
	}
	return sessions.Token(c.Request), nil
}

func authenticate(c *gin.Context, auth Authenticator, token string, logger *zap.Logger) bool {
	userID, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, pkg.ErrPermission) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return false
		}
		logger.Error("authenticate", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return false
	}
	// 注入 user_id
	c.Set(ContextUserIDKey, userID)
	return true
}
