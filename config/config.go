package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port        string
	OpenAIKey   string
	DatabaseURL string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

// Load 从环境变量加载配置
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
