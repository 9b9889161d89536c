// Package metadata 拉取筛选项元数据并缓存到应用状态
package metadata

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/store"
)

// Service 元数据缓存服务
// 每个成员独立拉取，失败时落空列表，不影响其它成员
type Service struct {
	logger *zap.Logger
	client *rental.Client
	state  *store.Store
}

// NewService 创建服务
func NewService(logger *zap.Logger, client *rental.Client, state *store.Store) *Service {
	return &Service{
		logger: logger,
		client: client,
		state:  state,
	}
}

// FetchMakes 拉取品牌列表
func (s *Service) FetchMakes(ctx context.Context) {
	s.fetch(ctx, "makes", s.client.GetMakes, s.state.SetMakes)
}

// FetchModels 拉取指定品牌的车型列表
func (s *Service) FetchModels(ctx context.Context, make string) {
	values, err := s.client.GetModels(ctx, make)
	if err != nil {
		s.logger.Warn("Failed to fetch metadata", zap.String("member", "models"), zap.String("make", make), zap.Error(err))
		values = []string{}
	}
	s.state.SetModels(values)
}

// FetchVehicleTypes 拉取车辆类型列表
func (s *Service) FetchVehicleTypes(ctx context.Context) {
	s.fetch(ctx, "vehicle_types", s.client.GetVehicleTypes, s.state.SetVehicleTypes)
}

// FetchTransmissionTypes 拉取变速箱类型列表
func (s *Service) FetchTransmissionTypes(ctx context.Context) {
	s.fetch(ctx, "transmission_types", s.client.GetTransmissionTypes, s.state.SetTransmissionTypes)
}

// FetchFuelTypes 拉取燃料类型列表
func (s *Service) FetchFuelTypes(ctx context.Context) {
	s.fetch(ctx, "fuel_types", s.client.GetFuelTypes, s.state.SetFuelTypes)
}

// FetchVehicleStatuses 拉取车辆状态取值列表
func (s *Service) FetchVehicleStatuses(ctx context.Context) {
	s.fetch(ctx, "vehicle_statuses", s.client.GetVehicleStatuses, s.state.SetVehicleStatuses)
}

// FetchAll 并发拉取全部成员，等全部完成后返回
// 单个成员失败不影响整体，各自记日志落空列表
func (s *Service) FetchAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, fn := range []func(context.Context){
		s.FetchMakes,
		s.FetchVehicleTypes,
		s.FetchTransmissionTypes,
		s.FetchFuelTypes,
		s.FetchVehicleStatuses,
	} {
		wg.Add(1)
		go func(fn func(context.Context)) {
			defer wg.Done()
			fn(ctx)
		}(fn)
	}
	wg.Wait()
}

func (s *Service) fetch(ctx context.Context, member string, get func(context.Context) ([]string, error), set func([]string)) {
	values, err := get(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch metadata", zap.String("member", member), zap.Error(err))
		values = []string{}
	}
	set(values)
}
