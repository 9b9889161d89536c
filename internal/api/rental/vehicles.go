package rental

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/langchou/rentdeck/internal/models"
)

// SearchParams 车辆搜索参数
// 零值字段不进查询串（稀疏参数约定）
type SearchParams struct {
	Location     string
	StartDate    string
	EndDate      string
	Make         string
	Model        string
	Year         int
	VehicleType  string
	Passengers   int
	Doors        int
	FuelType     string
	Transmission string
	Status       string

	// 分页与排序，sort 形如 +make,-model
	Sort string
	Page int
	Size int
}

// Query 构造稀疏查询参数
func (p SearchParams) Query() url.Values {
	q := url.Values{}
	setIfNotEmpty := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIfPositive := func(key string, value int) {
		if value > 0 {
			q.Set(key, strconv.Itoa(value))
		}
	}

	setIfNotEmpty("location", p.Location)
	setIfNotEmpty("startDate", p.StartDate)
	setIfNotEmpty("endDate", p.EndDate)
	setIfNotEmpty("make", p.Make)
	setIfNotEmpty("model", p.Model)
	setIfPositive("year", p.Year)
	setIfNotEmpty("vehicleType", p.VehicleType)
	setIfPositive("passengers", p.Passengers)
	setIfPositive("doors", p.Doors)
	setIfNotEmpty("fuelType", p.FuelType)
	setIfNotEmpty("transmission", p.Transmission)
	setIfNotEmpty("status", p.Status)
	setIfNotEmpty("sort", p.Sort)

	// page 从 0 开始，始终携带分页参数
	q.Set("page", strconv.Itoa(p.Page))
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	} else {
		q.Set("size", "10")
	}
	return q
}

// SearchVehicles 按条件搜索车辆
func (c *Client) SearchVehicles(ctx context.Context, params SearchParams) (*models.Page[models.Vehicle], error) {
	var page models.Page[models.Vehicle]
	if err := c.getJSON(ctx, "/v1/vehicles", params.Query(), &page); err != nil {
		return nil, fmt.Errorf("search vehicles: %w", err)
	}
	return &page, nil
}

// GetVehicle 获取单辆车
func (c *Client) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/vehicles/%d", id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVehicle 创建车辆
func (c *Client) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	var created models.Vehicle
	if err := c.postJSON(ctx, "/v1/vehicles", vehicle, &created); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return &created, nil
}

// UpdateVehicle 提交车辆的部分更新
func (c *Client) UpdateVehicle(ctx context.Context, id int64, vehicle models.Vehicle) (*models.Vehicle, error) {
	var updated models.Vehicle
	if err := c.putJSON(ctx, fmt.Sprintf("/v1/vehicles/%d", id), vehicle, &updated); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return &updated, nil
}
