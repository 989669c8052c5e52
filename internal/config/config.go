package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
//
// DatabaseURL, RedisAddr and OpenAIAPIKey are deliberately optional: an empty
// value selects the corresponding in-process mock so the service always comes
// up, even with nothing configured.
type Config struct {
	HTTPPort        string
	JWTSecret       string
	TokenExpiration time.Duration

	DatabaseURL string // Postgres; empty means no Postgres backend
	RedisAddr   string // Redis; empty means no Redis backend

	OpenAIAPIKey  string // empty means mock Completion Provider
	OpenAIModel   string
	OpenAIBaseURL string // optional override, e.g. a compatible proxy

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	ClientURL          string // SPA origin for post-login redirect + CORS

	MockStreamDelay time.Duration // inter-fragment delay of the mock provider
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "168") // Default 7 days
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil {
		log.Printf("Warning: Invalid JWT_EXPIRATION_HOURS '%s', using default 168h. Error: %v", tokenExpStr, err)
		tokenExpHours = 168
	}

	mockDelayStr := getEnv("MOCK_STREAM_DELAY_MS", "50")
	mockDelayMs, err := strconv.Atoi(mockDelayStr)
	if err != nil {
		log.Printf("Warning: Invalid MOCK_STREAM_DELAY_MS '%s', using default 50ms. Error: %v", mockDelayStr, err)
		mockDelayMs = 50
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "3001"),
		JWTSecret:       getEnv("JWT_SECRET", "your-super-secret-jwt-key"), // CHANGE THIS IN PRODUCTION!
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", "your-google-client-id"),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", "your-google-client-secret"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3001/auth/google/callback"),
		ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),

		MockStreamDelay: time.Duration(mockDelayMs) * time.Millisecond,
	}

	log.Printf("Loaded config: Port=%s, TokenExp=%s, Postgres=%t, Redis=%t, OpenAI=%t",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.DatabaseURL != "", cfg.RedisAddr != "", cfg.OpenAIAPIKey != "")

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
