package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env           string
	AppSecret     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AniListAPIURL string
	FillerListURL string
	JWTExpiry     time.Duration
	Port          string
	SyncEnabled   bool
	SyncInterval  time.Duration
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "anitrack")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	syncMinutes, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_MINUTES", "60"))

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		AppSecret:     appSecret,
		DatabaseURL:   dbURL,
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		AniListAPIURL: getEnv("ANILIST_API_URL", "https://graphql.anilist.co"),
		FillerListURL: getEnv("FILLERLIST_BASE_URL", "https://www.animefillerlist.com"),
		JWTExpiry:     time.Duration(expiryHours) * time.Hour,
		Port:          getEnv("PORT", "5005"),
		SyncEnabled:   getEnv("SYNC_ENABLED", "false") == "true",
		SyncInterval:  time.Duration(syncMinutes) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
