package rental

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/langchou/rentdeck/internal/models"
)

// CreateReservationRequest 创建预订的请求
type CreateReservationRequest struct {
	UserID    int64   `json:"userId"`
	VehicleID int64   `json:"vehicleId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Price     float64 `json:"price"`
}

// ReservationFilter 预订列表的过滤条件
type ReservationFilter struct {
	UserID int64
	Status string
	Sort   string
	Page   int
	Size   int
}

// CreateReservation 创建预订
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	var r models.Reservation
	if err := c.postJSON(ctx, "/v1/reservations", req, &r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	return &r, nil
}

// ListReservations 按条件列出预订
func (c *Client) ListReservations(ctx context.Context, f ReservationFilter) (*models.Page[models.Reservation], error) {
	q := url.Values{}
	if f.UserID > 0 {
		q.Set("userId", strconv.FormatInt(f.UserID, 10))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	q.Set("page", strconv.Itoa(f.Page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	} else {
		q.Set("size", "10")
	}

	var page models.Page[models.Reservation]
	if err := c.getJSON(ctx, "/v1/reservations", q, &page); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return &page, nil
}

// PayReservation 支付预订
func (c *Client) PayReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var r models.Reservation
	if err := c.postJSON(ctx, fmt.Sprintf("/v1/reservations/%d/pay", id), nil, &r); err != nil {
		return nil, fmt.Errorf("pay reservation: %w", err)
	}
	return &r, nil
}

// CompleteReservation 完成预订（还车）
func (c *Client) CompleteReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var r models.Reservation
	if err := c.postJSON(ctx, fmt.Sprintf("/v1/reservations/%d/complete", id), nil, &r); err != nil {
		return nil, fmt.Errorf("complete reservation: %w", err)
	}
	return &r, nil
}
