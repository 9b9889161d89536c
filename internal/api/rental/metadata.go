package rental

import (
	"context"
	"fmt"
	"net/url"
)

// GetMakes 列出全部品牌
func (c *Client) GetMakes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/v1/metadata/makes", nil)
}

// GetModels 列出某品牌下的车型
func (c *Client) GetModels(ctx context.Context, make string) ([]string, error) {
	q := url.Values{}
	q.Set("make", make)
	return c.getStrings(ctx, "/v1/metadata/models", q)
}

// GetVehicleTypes 列出车辆类型
func (c *Client) GetVehicleTypes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/v1/metadata/vehicle-types", nil)
}

// GetTransmissionTypes 列出变速箱类型
func (c *Client) GetTransmissionTypes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/v1/metadata/transmission-types", nil)
}

// GetFuelTypes 列出燃料类型
func (c *Client) GetFuelTypes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/v1/metadata/fuel-types", nil)
}

// GetVehicleStatuses 列出车辆状态取值
func (c *Client) GetVehicleStatuses(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/v1/metadata/vehicle-statuses", nil)
}

func (c *Client) getStrings(ctx context.Context, path string, query url.Values) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, path, query, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
