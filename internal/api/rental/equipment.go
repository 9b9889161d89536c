package rental

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/langchou/rentdeck/internal/models"
)

// ListEquipment 列出全部装备项
func (c *Client) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var items []models.Equipment
	if err := c.getJSON(ctx, "/v1/equipment", nil, &items); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// ListVehicleEquipment 列出某辆车的装备
func (c *Client) ListVehicleEquipment(ctx context.Context, vehicleID int64) ([]models.Equipment, error) {
	q := url.Values{}
	q.Set("vehicleId", strconv.FormatInt(vehicleID, 10))

	var items []models.Equipment
	if err := c.getJSON(ctx, "/v1/vehicle-equipment", q, &items); err != nil {
		return nil, fmt.Errorf("list vehicle equipment: %w", err)
	}
	return items, nil
}

// AssignEquipment 给车辆指派装备
func (c *Client) AssignEquipment(ctx context.Context, vehicleID, equipmentID int64) error {
	in := map[string]int64{
		"vehicleId":   vehicleID,
		"equipmentId": equipmentID,
	}
	if err := c.postJSON(ctx, "/v1/vehicle-equipment", in, nil); err != nil {
		return fmt.Errorf("assign equipment: %w", err)
	}
	return nil
}

// RemoveEquipment 移除车辆的装备
func (c *Client) RemoveEquipment(ctx context.Context, vehicleID, equipmentID int64) error {
	q := url.Values{}
	q.Set("vehicleId", strconv.FormatInt(vehicleID, 10))
	q.Set("equipmentId", strconv.FormatInt(equipmentID, 10))
	if err := c.delete(ctx, "/v1/vehicle-equipment", q); err != nil {
		return fmt.Errorf("remove equipment: %w", err)
	}
	return nil
}
