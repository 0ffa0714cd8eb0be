package config

import (
	"os"
	"strconv"
	"time"

	"sapar/internal/cache"
	"sapar/internal/database"
	"sapar/internal/messaging"
)

// Config holds the full application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Booking policy. The expiry window is how long an unpaid PENDING
	// reservation keeps its seats; the sweep interval is how often the
	// reclaimer cancels overdue ones. Both are process-wide policy, not
	// per-trip settings.
	ReservationExpiry   time.Duration
	ExpirySweepInterval time.Duration

	Database database.Config
	NATS     messaging.Config
	Cache    cache.Config
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		ReservationExpiry:   time.Duration(getEnvInt("RESERVATION_EXPIRY_MIN", 15)) * time.Minute,
		ExpirySweepInterval: time.Duration(getEnvInt("EXPIRY_SWEEP_INTERVAL_SEC", 60)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "sapar"),
			Password:           getEnv("DB_PASSWORD", "sapar123"),
			DBName:             getEnv("DB_NAME", "sapar"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "sapar"),
			ClientID:  getEnv("NATS_CLIENT_ID", "sapar-api"),
		},

		Cache: cache.Config{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			AuthCacheTTL: time.Duration(getEnvInt("REDIS_AUTH_TTL_SEC", 300)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
