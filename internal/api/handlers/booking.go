package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/service"
)

// GetQuote 选中车辆按当前租期的费用明细
func (h *Handler) GetQuote(c *gin.Context) {
	quote, err := h.bookingSvc.Quote(c.Request.Context())
	if err != nil {
		h.bookingError(c, err, "Failed to calculate quote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quote})
}

// Reserve 创建预订
func (h *Handler) Reserve(c *gin.Context) {
	reservation, err := h.bookingSvc.Reserve(c.Request.Context())
	if err != nil {
		h.bookingError(c, err, "Failed to create reservation")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": reservation})
}

// Pay 为当前预订付款
func (h *Handler) Pay(c *gin.Context) {
	reservation, err := h.bookingSvc.Pay(c.Request.Context())
	if err != nil {
		h.bookingError(c, err, "Payment failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reservation})
}

// Complete 完成预订，响应携带跳转指令
func (h *Handler) Complete(c *gin.Context) {
	result, err := h.bookingSvc.Complete(c.Request.Context())
	if err != nil {
		h.bookingError(c, err, "Failed to complete reservation")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCurrentReservation 当前预订
func (h *Handler) GetCurrentReservation(c *gin.Context) {
	reservation := h.state.CurrentReservation()
	if reservation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No current reservation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reservation})
}

// GetActiveRental 当前租用
func (h *Handler) GetActiveRental(c *gin.Context) {
	active := h.state.ActiveRental()
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active rental"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": active})
}

// GetPastRentals 历史租用记录
func (h *Handler) GetPastRentals(c *gin.Context) {
	rentals, err := h.bookingSvc.PastRentals(c.Request.Context())
	if err != nil {
		h.bookingError(c, err, "Failed to load rental history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rentals})
}

// ReturnCar 归还车辆，表单携带状况报告和分部位照片
func (h *Handler) ReturnCar(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid return form"})
		return
	}

	vehicleID, err := strconv.ParseInt(c.PostForm("vehicleId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	assessment := rental.DamageAssessment{
		VehicleID:       vehicleID,
		ConditionReport: c.PostForm("conditionReport"),
	}

	for _, position := range []string{"front", "back", "leftSide", "rightSide", "mileage"} {
		files := form.File[position]
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo " + position})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo " + position})
			return
		}
		assessment.Photos = append(assessment.Photos, rental.DamagePhoto{
			Position: position,
			FileName: files[0].Filename,
			Data:     data,
		})
	}

	if err := h.bookingSvc.ReturnCar(c.Request.Context(), assessment); err != nil {
		h.bookingError(c, err, "Failed to submit return")
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": "/my-rentals"})
}

// bookingError 把预订流程错误映射为响应
func (h *Handler) bookingError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNoSelectedCar):
		c.JSON(http.StatusConflict, gin.H{"error": "No car selected"})
	case errors.Is(err, service.ErrNoReservation):
		c.JSON(http.StatusConflict, gin.H{"error": "No current reservation"})
	case errors.Is(err, service.ErrNotLoggedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
	case errors.Is(err, service.ErrInvalidDates):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rental dates"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	}
}
