package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/session"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
// 成功后连接客服通道并预热元数据缓存
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.sess.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		case errors.Is(err, session.ErrServerUnreachable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Rental service unavailable"})
		default:
			h.logger.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	// 聊天连接失败不阻塞登录
	if err := h.chat.Connect(c.Request.Context(), user.ID); err != nil {
		h.logger.Warn("Failed to connect chat channel after login", zap.Error(err))
	}
	go h.metaSvc.FetchAll(context.Background())

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": "/my-rentals",
	})
}

// Logout 退出登录
// 返回前会话与本地存储都已清空
func (h *Handler) Logout(c *gin.Context) {
	h.chat.Disconnect()
	h.sess.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": "/welcome"})
}

// Register 注册新用户
func (h *Handler) Register(c *gin.Context) {
	var req rental.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.sess.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, session.ErrServerUnreachable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Rental service unavailable"})
			return
		}
		h.logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetSession 当前会话信息
func (h *Handler) GetSession(c *gin.Context) {
	if !h.sess.LoggedIn() {
		c.JSON(http.StatusOK, gin.H{"logged_in": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logged_in": true,
		"username":  h.sess.Username(),
		"user":      h.sess.CurrentUser(),
		"roles":     h.state.UserRoles(),
	})
}
