package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"
	"certgo_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenResolver 把 bearer 令牌解析为用户
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware 令牌缺失或无效返回 401，令牌有效但用户不存在返回 404
func AuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if scheme, token, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
			tokenString = strings.TrimSpace(token)
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), tokenString)
		switch {
		case err == nil:
		case errors.Is(err, util.ErrUnauthorized):
			logger.Log.Debug("token rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		case errors.Is(err, util.ErrNotFound):
			util.Error(c, http.StatusNotFound, "User not found")
			c.Abort()
			return
		default:
			util.LogInternalError(c, err)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, user)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			// 管理员直接放行
			if user.IsAdmin() || user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
