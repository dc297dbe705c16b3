package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Auth tokens
	JWTSecret string

	// Video access tokens
	VideoTokenSecret     string
	VideoTokenTTLMinutes int

	// Google APIs
	YouTubeAPIKey string
	DriveAPIKey   string

	// Gemini (coach notes, optional)
	GeminiAPIKey string

	// Billing
	MidtransServerKey string

	// Achievement workers
	AchievementWorkers int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		VideoTokenSecret:     mustGetEnv("VIDEO_TOKEN_SECRET"),
		VideoTokenTTLMinutes: getEnvAsIntOrDefault("VIDEO_TOKEN_TTL_MINUTES", 120),
		YouTubeAPIKey:        getEnvOrDefault("YOUTUBE_API_KEY", ""),
		DriveAPIKey:          getEnvOrDefault("DRIVE_API_KEY", ""),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		MidtransServerKey:    getEnvOrDefault("MIDTRANS_SERVER_KEY", ""),
		AchievementWorkers:   getEnvAsIntOrDefault("ACHIEVEMENT_WORKERS", 3),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
