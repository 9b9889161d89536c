package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	Debug      bool

	// 租车后端
	RentalAPIHost  string
	RequestTimeout time.Duration

	// 客服聊天
	ChatWSHost string

	// 本地存储
	LocalStorePath string

	// 界面默认值
	DefaultDarkMode bool
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnv("PORT", "4000"),
		Debug:           getEnvBool("DEBUG", false),
		RentalAPIHost:   getEnv("RENTAL_API_HOST", "http://localhost:8090"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ChatWSHost:      getEnv("CHAT_WS_HOST", "ws://localhost:9000"),
		LocalStorePath:  getEnv("LOCAL_STORE_PATH", "rentdeck.db"),
		DefaultDarkMode: getEnvBool("DEFAULT_DARK_MODE", false),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
