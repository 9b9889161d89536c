package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/rentdeck/internal/api/handlers"
	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/chat"
	"github.com/langchou/rentdeck/internal/config"
	"github.com/langchou/rentdeck/internal/localstore"
	"github.com/langchou/rentdeck/internal/metadata"
	"github.com/langchou/rentdeck/internal/service"
	"github.com/langchou/rentdeck/internal/session"
	"github.com/langchou/rentdeck/internal/store"
	"github.com/langchou/rentdeck/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Rentdeck", zap.String("port", cfg.ServerPort))

	// 创建 context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 打开本地存储
	local, err := localstore.Open(ctx, cfg.LocalStorePath)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	defer local.Close()

	// 应用状态
	state := store.New(logger, local, cfg.DefaultDarkMode)

	// 租车后端客户端
	client := rental.NewClient(logger, cfg.RentalAPIHost)
	client.SetHTTPClient(&http.Client{Timeout: cfg.RequestTimeout})

	// 会话管理，客户端通过它取令牌
	sess := session.New(logger, client, local, state)
	client.SetAuthorizer(sess)

	// 恢复上次会话（没有存储会话时静默跳过）
	if err := sess.Restore(ctx); err != nil {
		logger.Info("No session restored", zap.Error(err))
	}

	// 客服聊天通道
	chatChannel := chat.NewChannel(logger, cfg.ChatWSHost)
	if userID := state.UserID(); userID != 0 {
		if err := chatChannel.Connect(ctx, userID); err != nil {
			logger.Warn("Failed to connect chat channel on startup", zap.Error(err))
		}
	}

	// 元数据缓存
	metaSvc := metadata.NewService(logger, client, state)
	if state.UserID() != 0 {
		go metaSvc.FetchAll(ctx)
	}

	// 业务服务
	searchSvc := service.NewSearchService(logger, client, state)
	bookingSvc := service.NewBookingService(logger, client, state)

	// WebSocket Hub，界面实时推送
	wsHub := ws.NewHub(logger)
	wsHub.SetSnapshotProvider(func() interface{} {
		return state.GetSnapshot()
	})
	go wsHub.Run()

	// 应用状态变更推给所有界面连接
	go func() {
		for update := range state.Subscribe() {
			wsHub.BroadcastStoreUpdate(update)
		}
	}()

	// 聊天消息与连接状态同样走推送
	go func() {
		for msg := range chatChannel.Messages() {
			wsHub.BroadcastChatMessage(msg)
		}
	}()
	go func() {
		for status := range chatChannel.StatusChanges() {
			wsHub.BroadcastChatStatus(status)
		}
	}()

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(
		logger,
		state,
		sess,
		client,
		searchSvc,
		bookingSvc,
		metaSvc,
		chatChannel,
		wsHub,
	)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// 注册路由
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 断开客服通道
	chatChannel.Disconnect()

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
