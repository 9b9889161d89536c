package rental

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/langchou/rentdeck/internal/models"
)

// GetActivePricing 获取车辆当前生效的价格
func (c *Client) GetActivePricing(ctx context.Context, vehicleID int64) (*models.Pricing, error) {
	q := url.Values{}
	q.Set("vehicleId", strconv.FormatInt(vehicleID, 10))

	var p models.Pricing
	if err := c.getJSON(ctx, "/v1/pricing/active", q, &p); err != nil {
		return nil, fmt.Errorf("get active pricing: %w", err)
	}
	return &p, nil
}

// CalculatePrice 按租期计算价格
func (c *Client) CalculatePrice(ctx context.Context, vehicleID int64, startDate, endDate string) (*models.PriceQuote, error) {
	q := url.Values{}
	q.Set("vehicleId", strconv.FormatInt(vehicleID, 10))
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)

	var quote models.PriceQuote
	if err := c.getJSON(ctx, "/v1/pricing/calculate", q, &quote); err != nil {
		return nil, fmt.Errorf("calculate price: %w", err)
	}
	return &quote, nil
}

// ListPricingCategories 列出全部价格类别
func (c *Client) ListPricingCategories(ctx context.Context) ([]models.PricingCategory, error) {
	var categories []models.PricingCategory
	if err := c.getJSON(ctx, "/v1/pricing/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("list pricing categories: %w", err)
	}
	return categories, nil
}

// AssignPricingCategory 给车辆指派价格类别
func (c *Client) AssignPricingCategory(ctx context.Context, vehicleID, categoryID int64) error {
	in := map[string]int64{
		"vehicleId":  vehicleID,
		"categoryId": categoryID,
	}
	if err := c.postJSON(ctx, "/v1/pricing/categories/assign", in, nil); err != nil {
		return fmt.Errorf("assign pricing category: %w", err)
	}
	return nil
}

// RemovePricingCategory 移除车辆的价格类别
func (c *Client) RemovePricingCategory(ctx context.Context, vehicleID, categoryID int64) error {
	q := url.Values{}
	q.Set("vehicleId", strconv.FormatInt(vehicleID, 10))
	q.Set("categoryId", strconv.FormatInt(categoryID, 10))
	if err := c.delete(ctx, "/v1/pricing/categories/assign", q); err != nil {
		return fmt.Errorf("remove pricing category: %w", err)
	}
	return nil
}
