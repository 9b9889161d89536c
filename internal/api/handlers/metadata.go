package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMetadata 全部筛选项元数据
func (h *Handler) GetMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.state.Metadata()})
}

// GetModels 指定品牌的车型列表
// 带 make 参数时先刷新缓存
func (h *Handler) GetModels(c *gin.Context) {
	if make := c.Query("make"); make != "" {
		h.metaSvc.FetchModels(c.Request.Context(), make)
	}
	c.JSON(http.StatusOK, gin.H{"data": h.state.Metadata().Models})
}

// RefreshMetadata 重新拉取全部元数据
func (h *Handler) RefreshMetadata(c *gin.Context) {
	h.metaSvc.FetchAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": h.state.Metadata()})
}
