package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/chat"
)

// ChatConnect 以当前用户身份连接客服通道
func (h *Handler) ChatConnect(c *gin.Context) {
	userID := h.state.UserID()
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	if err := h.chat.Connect(c.Request.Context(), userID); err != nil {
		h.logger.Error("Failed to connect chat channel", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Support channel unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": h.chat.Status()})
}

// ChatDisconnect 断开客服通道
func (h *Handler) ChatDisconnect(c *gin.Context) {
	h.chat.Disconnect()
	c.JSON(http.StatusOK, gin.H{"status": h.chat.Status()})
}

// ChatHistory 会话内已收发的全部消息
func (h *Handler) ChatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.chat.Status(),
		"data":   h.chat.History(),
	})
}

// ChatSend 发送聊天消息
// 通道未连接时返回 409，消息不会静默丢失
func (h *Handler) ChatSend(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	msg, err := h.chat.SendMessage(req.Content)
	if err != nil {
		if errors.Is(err, chat.ErrNotConnected) {
			c.JSON(http.StatusConflict, gin.H{"error": "Support channel not connected"})
			return
		}
		h.logger.Error("Failed to send chat message", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

// ChatStatus 聊天连接状态
func (h *Handler) ChatStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.chat.Status()})
}
