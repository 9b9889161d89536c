package models

// 预订状态常量
const (
	ReservationStatusCreated   = "CREATED"
	ReservationStatusPaid      = "PAID"
	ReservationStatusCompleted = "COMPLETED"
)

// Reservation 预订记录
type Reservation struct {
	ID        int64   `json:"id"`
	User      User    `json:"user"`
	Vehicle   Vehicle `json:"vehicle"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// Rental 当前租用的视图状态
type Rental struct {
	CarName        string `json:"carName"`
	CarType        string `json:"carType"`
	ImageURL       string `json:"imageUrl"`
	PickupDate     string `json:"pickupDate"`
	PickupLocation string `json:"pickupLocation"`
	ReturnDate     string `json:"returnDate"`
	ReturnLocation string `json:"returnLocation"`
}

// RentalPatch 当前租用的部分更新
type RentalPatch struct {
	CarName        *string `json:"carName,omitempty"`
	CarType        *string `json:"carType,omitempty"`
	ImageURL       *string `json:"imageUrl,omitempty"`
	PickupDate     *string `json:"pickupDate,omitempty"`
	PickupLocation *string `json:"pickupLocation,omitempty"`
	ReturnDate     *string `json:"returnDate,omitempty"`
	ReturnLocation *string `json:"returnLocation,omitempty"`
}

// PastRental 历史租用记录行
type PastRental struct {
	ID        int64   `json:"id"`
	CarName   string  `json:"carName"`
	CarType   string  `json:"carType"`
	ImageURL  string  `json:"imageUrl"`
	DateRange string  `json:"dateRange"`
	Location  string  `json:"location"`
	TotalCost float64 `json:"totalCost"`
}
