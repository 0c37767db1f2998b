package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Lock     LockConfig     `json:"lock"`
	Logging  LoggingConfig  `json:"logging"`
	Booking  BookingConfig  `json:"booking"`
	Admin    AdminConfig    `json:"admin"`
	Metrics  MetricsConfig  `json:"metrics"`
	SSE      SSEConfig      `json:"sse"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
	CORSOrigins  []string      `json:"cors_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver         string `json:"driver"`
	Path           string `json:"path"`
	URL            string `json:"-"`
	MaxConnections int    `json:"max_connections"`
}

// LockConfig selects how bookings are serialized per equipment
type LockConfig struct {
	Backend  string        `json:"backend"`
	RedisURL string        `json:"-"`
	TTL      time.Duration `json:"ttl"`
	MaxWait  time.Duration `json:"max_wait"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// BookingConfig tunes reservation retries
type BookingConfig struct {
	MaxRetries int `json:"max_retries"`
}

// AdminConfig holds the credentials used to seed the primordial administrator
type AdminConfig struct {
	Login    string `json:"login"`
	Password string `json:"-"`
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// SSEConfig represents the live access history stream
type SSEConfig struct {
	Enabled           bool          `json:"enabled"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
	ClientBufferSize  int           `json:"client_buffer_size"`
}

// Load loads configuration from the environment. A .env file in the working
// directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
			CORSOrigins:  getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "sqlite"),
			Path:           getEnv("DB_PATH", "laboratory.db"),
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
		},
		Lock: LockConfig{
			Backend:  getEnv("LOCK_BACKEND", "local"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:      getEnvDuration("LOCK_TTL", 10*time.Second),
			MaxWait:  getEnvDuration("LOCK_MAX_WAIT", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Booking: BookingConfig{
			MaxRetries: getEnvInt("BOOKING_MAX_RETRIES", 3),
		},
		Admin: AdminConfig{
			Login:    getEnv("ADMIN_LOGIN", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		SSE: SSEConfig{
			Enabled:           getEnvBool("SSE_ENABLED", true),
			HeartbeatInterval: getEnvDuration("SSE_HEARTBEAT_INTERVAL", 15*time.Second),
			ClientBufferSize:  getEnvInt("SSE_CLIENT_BUFFER_SIZE", 64),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Lock.Backend {
	case "local":
	case "redis":
		if c.Lock.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis lock backend")
		}
	default:
		return fmt.Errorf("unsupported LOCK_BACKEND %q", c.Lock.Backend)
	}

	if c.Booking.MaxRetries < 0 {
		return fmt.Errorf("BOOKING_MAX_RETRIES must not be negative")
	}

	if c.IsProduction() && c.Database.Driver == "postgres" && c.Lock.Backend == "local" {
		return fmt.Errorf("LOCK_BACKEND=redis is required when several postgres-backed instances run in production")
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
