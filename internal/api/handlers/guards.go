package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireAuth 登录守卫
// 持有令牌但身份未就位时先恢复一次会话；恢复失败按未登录处理
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.state.UserID() != 0 {
			c.Next()
			return
		}

		if h.sess.LoggedIn() {
			if err := h.sess.Restore(c.Request.Context()); err == nil && h.state.UserID() != 0 {
				c.Next()
				return
			}
			h.logger.Warn("Session restore failed in auth guard", zap.String("path", c.Request.URL.Path))
		}

		h.redirectToWelcome(c)
	}
}

// RequireRole 角色守卫，缺角色时跳回搜索页
func (h *Handler) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.state.HasRole(role) {
			c.Next()
			return
		}

		h.logger.Warn("Role check failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("required", role),
			zap.Strings("roles", h.state.UserRoles()))
		c.Redirect(http.StatusFound, "/search")
		c.Abort()
	}
}

// redirectToWelcome 带回跳地址跳转到欢迎页
func (h *Handler) redirectToWelcome(c *gin.Context) {
	returnURL := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		returnURL += "?" + c.Request.URL.RawQuery
	}
	c.Redirect(http.StatusFound, "/welcome?returnUrl="+url.QueryEscape(returnURL))
	c.Abort()
}
