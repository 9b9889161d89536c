package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTheme 当前暗色模式开关
func (h *Handler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dark_mode": h.state.DarkMode()})
}

// ToggleTheme 翻转暗色模式，返回前已持久化
func (h *Handler) ToggleTheme(c *gin.Context) {
	h.state.ToggleDarkMode()
	c.JSON(http.StatusOK, gin.H{"dark_mode": h.state.DarkMode()})
}

// SetTheme 显式设置暗色模式
func (h *Handler) SetTheme(c *gin.Context) {
	var req struct {
		DarkMode *bool `json:"dark_mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dark_mode is required"})
		return
	}

	h.state.SetDarkMode(*req.DarkMode)
	c.JSON(http.StatusOK, gin.H{"dark_mode": h.state.DarkMode()})
}
