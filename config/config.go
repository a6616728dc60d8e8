package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	MongoURI      string
	MongoDatabase string
	DBTimeout     time.Duration

	JWTSecret []byte
	JWTExp    time.Duration

	CorsAllowedOrigins []string

	RateLimitPerMinute     int
	AuthRateLimitPerMinute int
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		GinMode:                getEnv("GIN_MODE", "debug"),
		MongoURI:               getEnv("MONGODB_URI", ""),
		MongoDatabase:          getEnv("MONGODB_DATABASE", "blogapi"),
		DBTimeout:              time.Duration(getEnvAsInt("DB_TIMEOUT_SECONDS", 10)) * time.Second,
		JWTSecret:              []byte(getEnv("JWT_SECRET", "")),
		JWTExp:                 time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 720)) * time.Hour,
		CorsAllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitPerMinute:     getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		AuthRateLimitPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
	}
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if len(c.JWTSecret) == 0 {
		return errors.New("JWT_SECRET must be set")
	}
	if c.DBTimeout <= 0 {
		return errors.New("DB_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
