package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/rentdeck/internal/models"
)

// GetProfile 个人资料
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":       h.state.UserProfile(),
		"active_tab": h.state.ActiveTab(),
	})
}

// UpdateProfile 部分更新个人资料，nil 字段保持不变
func (h *Handler) UpdateProfile(c *gin.Context) {
	var patch models.UserProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload"})
		return
	}

	h.state.UpdateUserProfile(patch)
	c.JSON(http.StatusOK, gin.H{"data": h.state.UserProfile()})
}

// SetActiveTab 切换资料页签
func (h *Handler) SetActiveTab(c *gin.Context) {
	var req struct {
		Tab string `json:"tab" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tab is required"})
		return
	}

	h.state.SetActiveTab(req.Tab)
	c.JSON(http.StatusOK, gin.H{"active_tab": req.Tab})
}
