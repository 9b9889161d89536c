package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/chat"
	"github.com/langchou/rentdeck/internal/metadata"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/service"
	"github.com/langchou/rentdeck/internal/session"
	"github.com/langchou/rentdeck/internal/store"
	"github.com/langchou/rentdeck/pkg/ws"
)

// vinPattern 17 位 VIN，不含 I/O/Q
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Za-hj-npr-z0-9]{17}$`)

// Handler HTTP 处理器
type Handler struct {
	logger     *zap.Logger
	state      *store.Store
	sess       *session.Session
	client     *rental.Client
	searchSvc  *service.SearchService
	bookingSvc *service.BookingService
	metaSvc    *metadata.Service
	chat       *chat.Channel
	wsHub      *ws.Hub
	validate   *validator.Validate
	upgrader   websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	state *store.Store,
	sess *session.Session,
	client *rental.Client,
	searchSvc *service.SearchService,
	bookingSvc *service.BookingService,
	metaSvc *metadata.Service,
	chatChannel *chat.Channel,
	wsHub *ws.Hub,
) *Handler {
	validate := validator.New()
	validate.RegisterValidation("vin", func(fl validator.FieldLevel) bool {
		return vinPattern.MatchString(fl.Field().String())
	})

	return &Handler{
		logger:     logger,
		state:      state,
		sess:       sess,
		client:     client,
		searchSvc:  searchSvc,
		bookingSvc: bookingSvc,
		metaSvc:    metaSvc,
		chat:       chatChannel,
		wsHub:      wsHub,
		validate:   validate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// 认证
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/register", h.Register)
		auth.GET("/session", h.GetSession)
	}

	// 主题开关不需要登录
	r.GET("/api/theme", h.GetTheme)
	r.POST("/api/theme/toggle", h.ToggleTheme)
	r.PUT("/api/theme", h.SetTheme)

	// 元数据
	r.GET("/api/metadata", h.GetMetadata)
	r.GET("/api/metadata/models", h.GetModels)
	r.POST("/api/metadata/refresh", h.RefreshMetadata)

	// 登录用户操作
	api := r.Group("/api", h.RequireAuth())
	{
		// 搜索
		api.POST("/search", h.Search)
		api.GET("/cars", h.ListCars)
		api.POST("/cars/:id/select", h.SelectCar)
		api.GET("/criteria", h.GetCriteria)
		api.PATCH("/criteria", h.UpdateCriteria)
		api.PUT("/filter", h.SetFilter)

		// 预订与付款
		api.GET("/quote", h.GetQuote)
		api.POST("/reservations", h.Reserve)
		api.POST("/reservations/pay", h.Pay)
		api.POST("/reservations/complete", h.Complete)
		api.GET("/reservations/current", h.GetCurrentReservation)

		// 付款表单
		api.GET("/payment", h.GetPaymentData)
		api.PATCH("/payment", h.UpdatePaymentData)
		api.PUT("/payment/method", h.UpdatePaymentMethod)
		api.PATCH("/payment/card", h.UpdateCardDetails)
		api.PATCH("/payment/billing-address", h.UpdateBillingAddress)

		// 我的租用
		api.GET("/rentals/active", h.GetActiveRental)
		api.GET("/rentals/history", h.GetPastRentals)
		api.POST("/rentals/return", h.ReturnCar)

		// 个人资料
		api.GET("/profile", h.GetProfile)
		api.PATCH("/profile", h.UpdateProfile)
		api.PUT("/profile/tab", h.SetActiveTab)

		// 客服聊天
		api.POST("/chat/connect", h.ChatConnect)
		api.POST("/chat/disconnect", h.ChatDisconnect)
		api.GET("/chat/messages", h.ChatHistory)
		api.POST("/chat/messages", h.ChatSend)
		api.GET("/chat/status", h.ChatStatus)
	}

	// 管理端
	admin := r.Group("/api/admin", h.RequireAuth(), h.RequireRole(models.RoleAdmin))
	{
		admin.GET("/vehicles", h.AdminListVehicles)
		admin.GET("/vehicles/:id", h.AdminGetVehicle)
		admin.POST("/vehicles", h.AdminCreateVehicle)
		admin.PUT("/vehicles/:id", h.AdminUpdateVehicle)

		admin.GET("/vehicles/:id/media", h.AdminListMedia)
		admin.POST("/vehicles/:id/media", h.AdminUploadMedia)
		admin.GET("/vehicles/:id/media/:mediaId/download", h.AdminDownloadMedia)
		admin.DELETE("/vehicles/:id/media/:mediaId", h.AdminDeleteMedia)

		admin.GET("/equipment", h.AdminListEquipment)
		admin.GET("/vehicles/:id/equipment", h.AdminListVehicleEquipment)
		admin.POST("/vehicles/:id/equipment/:equipmentId", h.AdminAssignEquipment)
		admin.DELETE("/vehicles/:id/equipment/:equipmentId", h.AdminRemoveEquipment)

		admin.GET("/pricing/categories", h.AdminListPricingCategories)
		admin.POST("/vehicles/:id/pricing/:categoryId", h.AdminAssignPricing)
		admin.DELETE("/vehicles/:id/pricing/:categoryId", h.AdminRemovePricing)
	}

	// 界面实时推送
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket 界面 WebSocket 接入
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"logged_in":   h.sess.LoggedIn(),
		"chat_status": h.chat.Status(),
		"ws_clients":  h.wsHub.ClientCount(),
	})
}
