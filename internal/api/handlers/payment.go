package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/rentdeck/internal/models"
)

// GetPaymentData 付款表单状态
func (h *Handler) GetPaymentData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.state.PaymentData()})
}

// UpdatePaymentData 部分更新付款表单
// 浅合并：CardDetails/BillingAddress 整体替换
func (h *Handler) UpdatePaymentData(c *gin.Context) {
	var patch models.PaymentDataPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment payload"})
		return
	}

	h.state.UpdatePaymentData(patch)
	c.JSON(http.StatusOK, gin.H{"data": h.state.PaymentData()})
}

// UpdatePaymentMethod 切换付款方式
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	var req struct {
		Method string `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment method is required"})
		return
	}

	h.state.UpdatePaymentMethod(req.Method)
	c.JSON(http.StatusOK, gin.H{"data": h.state.PaymentData()})
}

// UpdateCardDetails 部分更新银行卡信息
func (h *Handler) UpdateCardDetails(c *gin.Context) {
	var patch models.CardDetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card payload"})
		return
	}

	h.state.UpdateCardDetails(patch)
	c.JSON(http.StatusOK, gin.H{"data": h.state.PaymentData()})
}

// UpdateBillingAddress 部分更新账单地址
func (h *Handler) UpdateBillingAddress(c *gin.Context) {
	var patch models.BillingAddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid billing address payload"})
		return
	}

	h.state.UpdateBillingAddress(patch)
	c.JSON(http.StatusOK, gin.H{"data": h.state.PaymentData()})
}
