// Package store 是跨视图共享的应用状态容器
// 所有读取返回副本，所有写入通过具名 mutator 完成
package store

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/localstore"
	"github.com/langchou/rentdeck/internal/models"
)

// 状态变更事件类型
const (
	UpdateTheme       = "theme"
	UpdateProfile     = "profile"
	UpdateCars        = "cars"
	UpdateSelectedCar = "selected_car"
	UpdateRental      = "active_rental"
	UpdateReservation = "reservation"
	UpdatePayment     = "payment"
	UpdateSearch      = "search_criteria"
	UpdateUI          = "ui"
	UpdateMetadata    = "metadata"
	UpdateIdentity    = "identity"
)

// Update 状态变更事件，推送给订阅者（WebSocket hub 等）
type Update struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Persister 持久化偏好的最小接口，由 localstore 实现
type Persister interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Metadata 元数据查找列表的快照
type Metadata struct {
	Makes             []string `json:"makes"`
	Models            []string `json:"models"`
	VehicleTypes      []string `json:"vehicleTypes"`
	TransmissionTypes []string `json:"transmissionTypes"`
	FuelTypes         []string `json:"fuelTypes"`
	VehicleStatuses   []string `json:"vehicleStatuses"`
}

// Store 应用状态存储
type Store struct {
	logger  *zap.Logger
	persist Persister

	mu sync.RWMutex

	darkMode           bool
	userProfile        models.UserProfile
	cars               []models.Car
	selectedCar        *models.Car
	activeRental       *models.Rental
	currentReservation *models.Reservation
	paymentData        models.PaymentData
	searchCriteria     models.SearchCriteria
	activeTab          string
	activeFilter       string
	metadata           Metadata

	userID    int64
	userRoles []string

	subMu       sync.Mutex
	subscribers []chan Update
}

// New 创建状态存储
// darkMode 优先取持久化值，没有则用 defaultDark（系统偏好）
func New(logger *zap.Logger, persist Persister, defaultDark bool) *Store {
	s := &Store{
		logger:    logger,
		persist:   persist,
		darkMode:  defaultDark,
		activeTab: "search",
		paymentData: models.PaymentData{
			PaymentMethod: "credit-card",
		},
	}

	if persist != nil {
		if stored, ok, err := persist.Get(context.Background(), localstore.KeyDarkMode); err != nil {
			logger.Warn("Failed to read stored theme", zap.Error(err))
		} else if ok {
			s.darkMode = stored == "true"
		}
	}

	return s
}

// Subscribe 订阅状态变更事件
// 返回的 channel 带缓冲，慢消费者的事件会被丢弃而不是阻塞 mutator
func (s *Store) Subscribe() <-chan Update {
	ch := make(chan Update, 16)
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subMu.Unlock()
	return ch
}

// notify 向所有订阅者广播变更
func (s *Store) notify(kind string, data any) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- Update{Kind: kind, Data: data}:
		default:
			// 订阅者缓冲已满，丢弃
		}
	}
}

// DarkMode 当前主题
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

// UserProfile 个人资料快照
func (s *Store) UserProfile() models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userProfile
}

// Cars 搜索结果快照
func (s *Store) Cars() []models.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Car, len(s.cars))
	copy(out, s.cars)
	return out
}

// SelectedCar 当前选中的车辆，未选中返回 nil
func (s *Store) SelectedCar() *models.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedCar == nil {
		return nil
	}
	car := *s.selectedCar
	return &car
}

// ActiveRental 当前租用，没有返回 nil
func (s *Store) ActiveRental() *models.Rental {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeRental == nil {
		return nil
	}
	r := *s.activeRental
	return &r
}

// CurrentReservation 当前预订，没有返回 nil
func (s *Store) CurrentReservation() *models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentReservation == nil {
		return nil
	}
	r := *s.currentReservation
	return &r
}

// PaymentData 付款表单快照
func (s *Store) PaymentData() models.PaymentData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentData
}

// SearchCriteria 搜索条件快照
func (s *Store) SearchCriteria() models.SearchCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchCriteria
}

// ActiveTab 当前激活的标签页
func (s *Store) ActiveTab() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

// ActiveFilter 当前激活的过滤器，空串表示无
func (s *Store) ActiveFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeFilter
}

// Metadata 元数据快照
func (s *Store) Metadata() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.metadata
	m.Makes = append([]string(nil), s.metadata.Makes...)
	m.Models = append([]string(nil), s.metadata.Models...)
	m.VehicleTypes = append([]string(nil), s.metadata.VehicleTypes...)
	m.TransmissionTypes = append([]string(nil), s.metadata.TransmissionTypes...)
	m.FuelTypes = append([]string(nil), s.metadata.FuelTypes...)
	m.VehicleStatuses = append([]string(nil), s.metadata.VehicleStatuses...)
	return m
}

// UserID 当前用户 ID，0 表示未登录
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// UserRoles 当前用户角色集
func (s *Store) UserRoles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.userRoles...)
}

// HasRole 判断当前用户是否具有指定角色
func (s *Store) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.userRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Snapshot 打包当前全部视图状态（WebSocket 客户端初始化用）
type Snapshot struct {
	DarkMode           bool                  `json:"darkMode"`
	UserProfile        models.UserProfile    `json:"userProfile"`
	Cars               []models.Car          `json:"cars"`
	SelectedCar        *models.Car           `json:"selectedCar"`
	ActiveRental       *models.Rental        `json:"activeRental"`
	CurrentReservation *models.Reservation   `json:"currentReservation"`
	PaymentData        models.PaymentData    `json:"paymentData"`
	SearchCriteria     models.SearchCriteria `json:"searchCriteria"`
	ActiveTab          string                `json:"activeTab"`
	ActiveFilter       string                `json:"activeFilter"`
	Metadata           Metadata              `json:"metadata"`
	UserID             int64                 `json:"userId"`
	UserRoles          []string              `json:"userRoles"`
}

// GetSnapshot 获取完整状态快照
func (s *Store) GetSnapshot() Snapshot {
	return Snapshot{
		DarkMode:           s.DarkMode(),
		UserProfile:        s.UserProfile(),
		Cars:               s.Cars(),
		SelectedCar:        s.SelectedCar(),
		ActiveRental:       s.ActiveRental(),
		CurrentReservation: s.CurrentReservation(),
		PaymentData:        s.PaymentData(),
		SearchCriteria:     s.SearchCriteria(),
		ActiveTab:          s.ActiveTab(),
		ActiveFilter:       s.ActiveFilter(),
		Metadata:           s.Metadata(),
		UserID:             s.UserID(),
		UserRoles:          s.UserRoles(),
	}
}

// persistDarkMode 把主题写入本地存储，这是 store 唯一的落盘副作用
func (s *Store) persistDarkMode(dark bool) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Set(context.Background(), localstore.KeyDarkMode, strconv.FormatBool(dark)); err != nil {
		s.logger.Warn("Failed to persist theme", zap.Error(err))
	}
}
