package models

// 车辆状态常量（后端 vehicle-statuses 元数据的已知值）
const (
	VehicleStatusAvailable   = "Available"
	VehicleStatusRented      = "Rented"
	VehicleStatusMaintenance = "Maintenance"
	VehicleStatusUnavailable = "Unavailable"
)

// Vehicle 后端车辆实体
type Vehicle struct {
	ID           int64   `json:"id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	VIN          string  `json:"vin"`
	LicensePlate string  `json:"licensePlate"`
	VehicleType  string  `json:"vehicleType"`
	Status       string  `json:"status"`
	Passengers   int     `json:"passengers"`
	Doors        int     `json:"doors"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	PricePerDay  float64 `json:"pricePerDay,omitempty"`
	Active       bool    `json:"active"`
}

// Car 搜索结果的视图模型行
type Car struct {
	ID          int64   `json:"id"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	VehicleType string  `json:"type"`
	Seats       int     `json:"seats"`
	Bags        int     `json:"bags"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available"`
}

// CarFromVehicle 把后端车辆映射为搜索视图行
// id/make/model/year 按原样保留
func CarFromVehicle(v Vehicle) Car {
	return Car{
		ID:          v.ID,
		Make:        v.Make,
		Model:       v.Model,
		Year:        v.Year,
		VehicleType: v.VehicleType,
		Seats:       v.Passengers,
		Bags:        v.Doors, // 后端没有行李数，用门数近似展示
		Price:       v.PricePerDay,
		ImageURL:    v.ImageURL,
		Available:   v.Status == VehicleStatusAvailable,
	}
}

// SearchCriteria 搜索条件（基本字段 + 过滤字段）
type SearchCriteria struct {
	Location     string `json:"location"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	VehicleType  string `json:"vehicleType,omitempty"`
	Passengers   int    `json:"passengers,omitempty"`
	Doors        int    `json:"doors,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	Transmission string `json:"transmission,omitempty"`
}

// SearchCriteriaPatch 搜索条件的部分更新，nil 字段保持不变
type SearchCriteriaPatch struct {
	Location     *string `json:"location,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	VehicleType  *string `json:"vehicleType,omitempty"`
	Passengers   *int    `json:"passengers,omitempty"`
	Doors        *int    `json:"doors,omitempty"`
	FuelType     *string `json:"fuelType,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
}

// Equipment 装备项
type Equipment struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
