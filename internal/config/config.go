package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL    string
	WSBaseURL     string
	SessionDBPath string
	PageSize      int
	Env           string
}

func Load() *Config {
	log.Println("[CONFIG] Attempting to load .env file...")

	err := godotenv.Load()
	if err != nil {
		log.Println("[CONFIG] ℹ️ No .env file found, relying on system environment variables")
	} else {
		log.Println("[CONFIG] ✅ Successfully loaded .env file")
	}

	cfg := &Config{
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),
		WSBaseURL:     getEnv("WS_BASE_URL", "ws://localhost:8000"),
		SessionDBPath: getEnv("SESSION_DB_PATH", "quickdraw_session.db"),
		PageSize:      getEnvInt("PAGE_SIZE", 10),
		Env:           getEnv("APP_ENV", "development"),
	}

	log.Printf("[CONFIG] Environment: %s", cfg.Env)
	log.Printf("[CONFIG] Room service: %s", cfg.APIBaseURL)
	log.Printf("[CONFIG] Realtime gateway: %s", cfg.WSBaseURL)
	log.Printf("[CONFIG] Session store: %s", cfg.SessionDBPath)

	if cfg.APIBaseURL == "" {
		log.Fatal("[CONFIG] ❌ CRITICAL: API_BASE_URL is empty. Client cannot start.")
	}
	if cfg.WSBaseURL == "" {
		log.Fatal("[CONFIG] ❌ CRITICAL: WS_BASE_URL is empty. Client cannot start.")
	}

	log.Println("[CONFIG] All configuration variables successfully initialized")
	return cfg
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Printf("[CONFIG] ⚠️  Variable %s not found, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[CONFIG] ⚠️  Variable %s is not a number (%q), using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
