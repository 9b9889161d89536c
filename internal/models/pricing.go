package models

// Pricing 车辆的生效价格
type Pricing struct {
	ID          int64   `json:"id"`
	VehicleID   int64   `json:"vehicleId"`
	CategoryID  int64   `json:"categoryId"`
	PricePerDay float64 `json:"pricePerDay"`
	Currency    string  `json:"currency"`
}

// PricingCategory 价格类别
type PricingCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	PricePerDay float64 `json:"pricePerDay"`
}

// PriceQuote 按租期计算出的价格
type PriceQuote struct {
	VehicleID   int64   `json:"vehicleId"`
	Days        int     `json:"days"`
	PricePerDay float64 `json:"pricePerDay"`
	Subtotal    float64 `json:"subtotal"`
	TaxesFees   float64 `json:"taxesAndFees"`
	Total       float64 `json:"total"`
}
