package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret  string        // Required: HMAC secret for session tokens
	SessionTTL time.Duration // Optional: session token lifetime (default: 10m)
	Pepper     string        // Optional: appended to passwords before hashing

	UserStore    string // User store driver (memory, sqlite, postgres) (default: sqlite)
	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PostgresDSN  string // Required when UserStore is postgres

	RedisAddr     string // Optional: redis address for revocation and 2FA stores
	RedisPassword string // Optional: redis password

	ResendAPIKey string // Optional: Resend API key; without it codes are only logged
	EmailSender  string // Sender address for 2FA emails

	TwoFactorTTL time.Duration // Lifetime of an emailed 2FA code (default: 10m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 3000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expiry sweep interval for in-memory stores (default: 1m)
}

func LoadConfig() Config {
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	return Config{
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: getEnvDurationOrDefault("SESSION_TTL", 10*time.Minute),
		Pepper:     os.Getenv("AUTH_PEPPER"),

		UserStore:    getEnvOrDefault("AUTH_USER_STORE", "sqlite"),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PostgresDSN:  os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailSender:  getEnvOrDefault("EMAIL_SENDER", "auth@localhost"),

		TwoFactorTTL: getEnvDurationOrDefault("TWO_FACTOR_TTL", 10*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 3000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are treated as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
