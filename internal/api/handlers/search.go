package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/service"
)

type searchRequest struct {
	Criteria models.SearchCriteriaPatch `json:"criteria"`
	Sort     string                     `json:"sort"`
	Page     int                        `json:"page"`
	Size     int                        `json:"size"`
}

// Search 按条件搜索车辆
// 过期的并发响应不落状态，返回 204 让界面忽略
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search payload"})
		return
	}

	cars, err := h.searchSvc.Search(c.Request.Context(), req.Criteria, service.SearchOptions{
		Sort: req.Sort,
		Page: req.Page,
		Size: req.Size,
	})
	if err != nil {
		if errors.Is(err, service.ErrStaleSearch) {
			c.Status(http.StatusNoContent)
			return
		}
		h.logger.Error("Search failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cars})
}

// ListCars 当前搜索结果列表
func (h *Handler) ListCars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.state.Cars()})
}

// SelectCar 选中车辆进入预订流程
func (h *Handler) SelectCar(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car ID"})
		return
	}

	car, err := h.searchSvc.SelectCar(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": car})
}

// GetCriteria 当前搜索条件
func (h *Handler) GetCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.state.SearchCriteria()})
}

// UpdateCriteria 更新搜索条件，nil 字段保持不变
func (h *Handler) UpdateCriteria(c *gin.Context) {
	var patch models.SearchCriteriaPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid criteria payload"})
		return
	}

	h.state.UpdateSearchCriteria(patch)
	c.JSON(http.StatusOK, gin.H{"data": h.state.SearchCriteria()})
}

// SetFilter 切换结果页的快捷筛选
func (h *Handler) SetFilter(c *gin.Context) {
	var req struct {
		Filter string `json:"filter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter payload"})
		return
	}

	h.state.SetActiveFilter(req.Filter)
	c.JSON(http.StatusOK, gin.H{"filter": req.Filter})
}
