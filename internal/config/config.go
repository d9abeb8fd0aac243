package config

import (
	"os"
	"time"
)

const (
	// Auth
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "chatterbox-service"

	// Pagination
	DefaultMessagePage  = 1
	DefaultMessageLimit = 50

	// API rate limiting, per client IP
	RateLimitPerSecond = 2
	RateLimitBurst     = 10
)

// Config carries everything read from the environment at startup.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	FrontendURL   string
}

// Load reads the configuration from the environment, falling back to
// local development defaults.
func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DB", "chatterbox"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-change-me"),
		FrontendURL:   getenv("FRONTEND_URL", "http://localhost:5173"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
