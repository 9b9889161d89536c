package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

// 错误定义
var (
	ErrNoSelectedCar   = errors.New("no car selected")
	ErrNoReservation   = errors.New("no current reservation")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrInvalidDates    = errors.New("invalid rental dates")
)

// taxesAndFees 固定税费
const taxesAndFees = 25.00

// dateLayout 预订日期格式
const dateLayout = "2006-01-02"

// CompletionResult 完成付款后的跳转指令
// 界面展示成功提示 DelayMS 毫秒后跳到 Redirect
type CompletionResult struct {
	Reservation models.Reservation `json:"reservation"`
	Redirect    string             `json:"redirect"`
	DelayMS     int                `json:"delay_ms"`
}

// BookingService 预订与付款流程
type BookingService struct {
	logger *zap.Logger
	client *rental.Client
	state  *store.Store
}

// NewBookingService 创建预订服务
func NewBookingService(logger *zap.Logger, client *rental.Client, state *store.Store) *BookingService {
	return &BookingService{
		logger: logger,
		client: client,
		state:  state,
	}
}

// RentalDays 计算租期天数，取还两天都算整天
func RentalDays(startDate, endDate string) (int, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0, fmt.Errorf("parse start date: %w", ErrInvalidDates)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("parse end date: %w", ErrInvalidDates)
	}
	if end.Before(start) {
		return 0, ErrInvalidDates
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// Quote 计算选中车辆按当前租期的费用明细
// 优先走后端计价接口，接口不可用时按日价本地估算
func (s *BookingService) Quote(ctx context.Context) (*models.PriceQuote, error) {
	car := s.state.SelectedCar()
	if car == nil {
		return nil, ErrNoSelectedCar
	}
	criteria := s.state.SearchCriteria()

	days, err := RentalDays(criteria.StartDate, criteria.EndDate)
	if err != nil {
		return nil, err
	}

	if quote, err := s.client.CalculatePrice(ctx, car.ID, criteria.StartDate, criteria.EndDate); err == nil {
		s.applyQuote(quote)
		return quote, nil
	} else {
		s.logger.Debug("Pricing endpoint unavailable, using local estimate", zap.Error(err))
	}

	pricePerDay := car.Price
	if pricing, err := s.client.GetActivePricing(ctx, car.ID); err == nil && pricing.PricePerDay > 0 {
		pricePerDay = pricing.PricePerDay
	}

	subtotal := float64(days) * pricePerDay
	quote := &models.PriceQuote{
		VehicleID:   car.ID,
		Days:        days,
		PricePerDay: pricePerDay,
		Subtotal:    subtotal,
		TaxesFees:   taxesAndFees,
		Total:       subtotal + taxesAndFees,
	}
	s.applyQuote(quote)
	return quote, nil
}

// applyQuote 把总价同步进付款表单
func (s *BookingService) applyQuote(quote *models.PriceQuote) {
	s.state.UpdatePaymentData(models.PaymentDataPatch{
		TotalAmount: &quote.Total,
	})
}

// Reserve 用当前选中车辆和租期创建预订
func (s *BookingService) Reserve(ctx context.Context) (*models.Reservation, error) {
	userID := s.state.UserID()
	if userID == 0 {
		return nil, ErrNotLoggedIn
	}
	car := s.state.SelectedCar()
	if car == nil {
		return nil, ErrNoSelectedCar
	}
	criteria := s.state.SearchCriteria()
	if criteria.StartDate == "" || criteria.EndDate == "" {
		return nil, ErrInvalidDates
	}

	quote, err := s.Quote(ctx)
	if err != nil {
		return nil, err
	}

	reservation, err := s.client.CreateReservation(ctx, rental.CreateReservationRequest{
		UserID:    userID,
		VehicleID: car.ID,
		StartDate: criteria.StartDate,
		EndDate:   criteria.EndDate,
		Price:     quote.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}

	s.state.SetCurrentReservation(*reservation)
	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("vehicle_id", car.ID),
		zap.Float64("price", quote.Total))
	return reservation, nil
}

// Pay 为当前预订付款
func (s *BookingService) Pay(ctx context.Context) (*models.Reservation, error) {
	current := s.state.CurrentReservation()
	if current == nil {
		return nil, ErrNoReservation
	}

	paid, err := s.client.PayReservation(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("pay reservation: %w", err)
	}

	s.state.SetCurrentReservation(*paid)
	s.logger.Info("Reservation paid", zap.Int64("reservation_id", paid.ID))
	return paid, nil
}

// Complete 完成预订流程并返回跳转指令
// 界面合同：提示停留 2 秒后进入我的租用页
func (s *BookingService) Complete(ctx context.Context) (*CompletionResult, error) {
	current := s.state.CurrentReservation()
	if current == nil {
		return nil, ErrNoReservation
	}

	done, err := s.client.CompleteReservation(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("complete reservation: %w", err)
	}

	s.state.SetCurrentReservation(*done)
	s.applyActiveRental(*done)
	s.logger.Info("Reservation completed", zap.Int64("reservation_id", done.ID))

	return &CompletionResult{
		Reservation: *done,
		Redirect:    "/my-rentals",
		DelayMS:     2000,
	}, nil
}

// applyActiveRental 把完成的预订同步为当前租用视图
func (s *BookingService) applyActiveRental(r models.Reservation) {
	carName := fmt.Sprintf("%s %s", r.Vehicle.Make, r.Vehicle.Model)
	criteria := s.state.SearchCriteria()
	s.state.UpdateActiveRental(models.RentalPatch{
		CarName:        &carName,
		CarType:        &r.Vehicle.VehicleType,
		ImageURL:       &r.Vehicle.ImageURL,
		PickupDate:     &r.StartDate,
		PickupLocation: &criteria.Location,
		ReturnDate:     &r.EndDate,
		ReturnLocation: &criteria.Location,
	})
}

// PastRentals 拉取登录用户的历史租用记录
func (s *BookingService) PastRentals(ctx context.Context) ([]models.PastRental, error) {
	userID := s.state.UserID()
	if userID == 0 {
		return nil, ErrNotLoggedIn
	}

	page, err := s.client.ListReservations(ctx, rental.ReservationFilter{
		UserID: userID,
		Status: models.ReservationStatusCompleted,
		Sort:   "-startDate",
	})
	if err != nil {
		return nil, fmt.Errorf("list past rentals: %w", err)
	}

	criteria := s.state.SearchCriteria()
	rentals := make([]models.PastRental, 0, len(page.Data))
	for _, r := range page.Data {
		rentals = append(rentals, models.PastRental{
			ID:        r.ID,
			CarName:   fmt.Sprintf("%s %s", r.Vehicle.Make, r.Vehicle.Model),
			CarType:   r.Vehicle.VehicleType,
			ImageURL:  r.Vehicle.ImageURL,
			DateRange: fmt.Sprintf("%s ~ %s", r.StartDate, r.EndDate),
			Location:  criteria.Location,
			TotalCost: r.Price,
		})
	}
	return rentals, nil
}

// ReturnCar 归还车辆并提交状况报告
func (s *BookingService) ReturnCar(ctx context.Context, assessment rental.DamageAssessment) error {
	if assessment.UserID == 0 {
		assessment.UserID = s.state.UserID()
	}
	if assessment.UserID == 0 {
		return ErrNotLoggedIn
	}
	if err := s.client.SubmitDamageAssessment(ctx, assessment); err != nil {
		return fmt.Errorf("return car: %w", err)
	}
	s.logger.Info("Damage assessment submitted",
		zap.Int64("vehicle_id", assessment.VehicleID),
		zap.Int("photos", len(assessment.Photos)))
	return nil
}
