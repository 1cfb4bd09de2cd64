package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	FrontendURL    string

	DatabaseURL          string
	SQLitePath           string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string

	AIReplyDelay    time.Duration
	IdleSessionTTL  time.Duration
	CleanupInterval time.Duration

	LogLevel  string
	LogPretty bool
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" && trimmed != frontendURL {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	AppConfig = &Config{
		Port:           port,
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,

		// empty DATABASE_URL means the embedded SQLite store
		DatabaseURL:          GetEnv("DATABASE_URL", ""),
		SQLitePath:           GetEnv("SQLITE_PATH", "data/puissance4.db"),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		JWTSecret:         GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		AdminUsername:     GetEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: GetEnv("ADMIN_PASSWORD_HASH", ""),

		AIReplyDelay:    GetEnvAsDuration("AI_REPLY_DELAY_MS", time.Second, time.Millisecond),
		IdleSessionTTL:  GetEnvAsInterval("IDLE_SESSION_TTL_MINUTES", 30*time.Minute, time.Minute),
		CleanupInterval: GetEnvAsInterval("CLEANUP_INTERVAL_MINUTES", 5*time.Minute, time.Minute),

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogPretty: GetEnvAsBool("LOG_PRETTY", false),
	}

	return AppConfig
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("[CONFIG] Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", defaultValue).Msg("[CONFIG] Invalid boolean value, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit. Negative values fall back
// to the default.
func GetEnvAsDuration(key string, defaultValue, unit time.Duration) time.Duration {
	n := GetEnvAsInt(key, -1)
	if n < 0 {
		return defaultValue
	}
	return time.Duration(n) * unit
}

// GetEnvAsInterval is GetEnvAsDuration for periods that must be positive:
// zero falls back to the default as well.
func GetEnvAsInterval(key string, defaultValue, unit time.Duration) time.Duration {
	if d := GetEnvAsDuration(key, defaultValue, unit); d > 0 {
		return d
	}
	return defaultValue
}
