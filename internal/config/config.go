package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Switch polling
	ICWSBaseURL  string
	ICWSUsername string
	ICWSPassword string
	ICWSStation  string
	PollInterval time.Duration

	// Workgroups excluded from availability reporting
	DisallowedWorkgroups []string

	// BI push
	BIBaseURL      string
	BIDatasetID    string
	BIClientID     string
	BIClientSecret string
	BITokenURL     string
	PushInterval   time.Duration

	// WebSocket
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		ICWSBaseURL:  getEnv("ICWS_BASE_URL", "http://localhost:8018/icws"),
		ICWSUsername: getEnv("ICWS_USERNAME", ""),
		ICWSPassword: getEnv("ICWS_PASSWORD", ""),
		ICWSStation:  getEnv("ICWS_STATION", ""),

		BIBaseURL:      getEnv("BI_BASE_URL", ""),
		BIDatasetID:    getEnv("BI_DATASET_ID", ""),
		BIClientID:     getEnv("BI_CLIENT_ID", ""),
		BIClientSecret: getEnv("BI_CLIENT_SECRET", ""),
		BITokenURL:     getEnv("BI_TOKEN_URL", ""),
	}

	pollInterval, err := strconv.Atoi(getEnv("POLL_INTERVAL", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	config.PollInterval = time.Duration(pollInterval) * time.Second

	pushInterval, err := strconv.Atoi(getEnv("PUSH_INTERVAL", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_INTERVAL: %w", err)
	}
	config.PushInterval = time.Duration(pushInterval) * time.Second

	if raw := getEnv("DISALLOWED_WORKGROUPS", ""); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				config.DisallowedWorkgroups = append(config.DisallowedWorkgroups, name)
			}
		}
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// OriginAllowed reports whether the given Origin header value may open a
// websocket. An empty origin (non-browser client) is allowed.
func (c *Config) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
