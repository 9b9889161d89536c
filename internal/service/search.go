// Package service 业务服务层：搜索、预订与付款流程
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

// ErrStaleSearch 搜索响应返回时已有更新的请求发出
var ErrStaleSearch = errors.New("stale search response")

// placeholderImage 没有封面图时的占位图
const placeholderImage = "/assets/images/car-placeholder.svg"

// SearchService 车辆搜索
// 每次请求带单调递增序号，只有最新请求的结果会写进应用状态
type SearchService struct {
	logger *zap.Logger
	client *rental.Client
	state  *store.Store
	seq    atomic.Uint64
}

// NewSearchService 创建搜索服务
func NewSearchService(logger *zap.Logger, client *rental.Client, state *store.Store) *SearchService {
	return &SearchService{
		logger: logger,
		client: client,
		state:  state,
	}
}

// SearchOptions 分页与排序选项
type SearchOptions struct {
	Sort string
	Page int
	Size int
}

// Search 按条件搜索并更新结果列表
// patch 先合入持久的搜索条件；过期响应被丢弃并返回 ErrStaleSearch
func (s *SearchService) Search(ctx context.Context, patch models.SearchCriteriaPatch, opts SearchOptions) ([]models.Car, error) {
	s.state.UpdateSearchCriteria(patch)
	criteria := s.state.SearchCriteria()

	seq := s.seq.Add(1)
	params := paramsFromCriteria(criteria, opts)

	page, err := s.client.SearchVehicles(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	cars := s.buildRows(ctx, page.Data)

	// 结果返回前又发出了新请求，这批结果作废
	if seq != s.seq.Load() {
		s.logger.Debug("Discarding stale search response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", s.seq.Load()))
		return nil, ErrStaleSearch
	}

	s.state.UpdateCars(cars)
	s.logger.Info("Search results updated",
		zap.Int("count", len(cars)),
		zap.Int64("total", page.Total))
	return cars, nil
}

// SelectCar 选中一辆车进入预订流程
func (s *SearchService) SelectCar(ctx context.Context, carID int64) (*models.Car, error) {
	for _, car := range s.state.Cars() {
		if car.ID == carID {
			s.state.SetSelectedCar(car)
			return &car, nil
		}
	}

	// 不在当前结果列表时按 ID 单查
	vehicle, err := s.client.GetVehicle(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("select car: %w", err)
	}
	car := models.CarFromVehicle(*vehicle)
	if car.ImageURL == "" {
		car.ImageURL = s.coverURL(ctx, car.ID)
	}
	s.state.SetSelectedCar(car)
	return &car, nil
}

// buildRows 把车辆页映射为视图行并并发补齐封面图
func (s *SearchService) buildRows(ctx context.Context, vehicles []models.Vehicle) []models.Car {
	cars := make([]models.Car, len(vehicles))
	var wg sync.WaitGroup
	for i, v := range vehicles {
		cars[i] = models.CarFromVehicle(v)
		if cars[i].ImageURL != "" {
			continue
		}
		wg.Add(1)
		go func(i int, vehicleID int64) {
			defer wg.Done()
			cars[i].ImageURL = s.coverURL(ctx, vehicleID)
		}(i, v.ID)
	}
	wg.Wait()
	return cars
}

// coverURL 取车辆封面图地址，查不到时返回占位图
func (s *SearchService) coverURL(ctx context.Context, vehicleID int64) string {
	items, err := s.client.ListVehicleMedia(ctx, vehicleID)
	if err != nil {
		s.logger.Debug("Failed to fetch vehicle media", zap.Int64("vehicle_id", vehicleID), zap.Error(err))
		return placeholderImage
	}
	for _, item := range items {
		if item.IsCover || item.Type == models.MediaTypeCoverImage {
			if item.URL != "" {
				return item.URL
			}
		}
	}
	return placeholderImage
}

// paramsFromCriteria 把搜索条件转成请求参数
func paramsFromCriteria(c models.SearchCriteria, opts SearchOptions) rental.SearchParams {
	return rental.SearchParams{
		Location:     c.Location,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Make:         c.Make,
		Model:        c.Model,
		VehicleType:  c.VehicleType,
		Passengers:   c.Passengers,
		Doors:        c.Doors,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		Sort:         opts.Sort,
		Page:         opts.Page,
		Size:         opts.Size,
	}
}
