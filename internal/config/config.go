package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"binroute-backend/internal/models"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment
type Config struct {
	DatabaseURL             string
	Port                    string
	JWTSecret               string
	RedisURL                string
	FirebaseCredentialsB64  string
	FirebaseCredentialsFile string
	DefaultThreshold        float64
	SeedDemoData            bool
	RouteDebug              bool
}

// Load reads .env if present, then the environment
func Load() (*Config, error) {
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		Port:                    getEnv("PORT", "8080"),
		JWTSecret:               os.Getenv("APP_JWT_SECRET"),
		RedisURL:                os.Getenv("REDIS_URL"),
		FirebaseCredentialsB64:  os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		DefaultThreshold:        models.DefaultThreshold,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if raw := os.Getenv("DEFAULT_THRESHOLD"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 || threshold > 100 {
			return nil, fmt.Errorf("DEFAULT_THRESHOLD must be a number between 0 and 100, got %q", raw)
		}
		cfg.DefaultThreshold = threshold
	}

	if raw := os.Getenv("SEED_DEMO_DATA"); raw != "" {
		seed, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("SEED_DEMO_DATA must be a boolean, got %q", raw)
		}
		cfg.SeedDemoData = seed
	}

	if raw := os.Getenv("ROUTE_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("ROUTE_DEBUG must be a boolean, got %q", raw)
		}
		cfg.RouteDebug = debug
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
