package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Auth         AuthConfig
	Escalation   EscalationConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DatabaseURL string // DATABASE_URL - takes precedence over individual vars
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret     string // JWT_SECRET: required in production
	TokenTTLHours int    // JWT_TTL_HOURS
}

// EscalationConfig holds escalation sweep configuration
type EscalationConfig struct {
	SweepSchedule string // ESCALATION_SWEEP_SCHEDULE: cron expression, e.g. "@hourly"
}

// NotificationConfig holds notification worker configuration
type NotificationConfig struct {
	IntervalSeconds int // NOTIFICATION_INTERVAL_SECONDS
	BatchSize       int // NOTIFICATION_BATCH_SIZE
}

// RateLimitConfig holds per-citizen submission rate limiting
type RateLimitConfig struct {
	ComplaintsPerHour int // RATE_LIMIT_COMPLAINTS_PER_HOUR (0 = disabled)
	Burst             int // RATE_LIMIT_BURST
}

// LoadConfig loads configuration from environment variables.
// Supports DATABASE_URL or individual DB_* variables for local dev.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "3306"),
			User:        os.Getenv("DB_USER"),
			Password:    os.Getenv("DB_PASSWORD"),
			DBName:      getEnv("DB_NAME", "jansetu"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		},
		Escalation: EscalationConfig{
			SweepSchedule: getEnv("ESCALATION_SWEEP_SCHEDULE", "@hourly"),
		},
		Notification: NotificationConfig{
			IntervalSeconds: getEnvInt("NOTIFICATION_INTERVAL_SECONDS", 30),
			BatchSize:       getEnvInt("NOTIFICATION_BATCH_SIZE", 50),
		},
		RateLimit: RateLimitConfig{
			ComplaintsPerHour: getEnvInt("RATE_LIMIT_COMPLAINTS_PER_HOUR", 10),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 3),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
