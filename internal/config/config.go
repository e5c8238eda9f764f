// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the Matrix account
// settings, the database path, pool API options, and the admin listener.
package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// MatrixConfig holds the chat-protocol settings.
type MatrixConfig struct {
	HomeserverURL string // MATRIX_HOMESERVER_URL (e.g. "https://matrix.org")
	UserID        string // MATRIX_USER_ID (e.g. "@braiinsbot:matrix.org")
	Password      string // MATRIX_PASSWORD (used only when no stored session exists)
	ProxyURL      string // MATRIX_PROXY (optional HTTP(S) proxy URL)
	DisplayName   string // MATRIX_DISPLAY_NAME
}

// PoolConfig holds the Braiins Pool API client settings.
type PoolConfig struct {
	BaseURL     string        // POOL_BASE_URL
	SOCKS5Proxy string        // POOL_PROXY (host:port, typically a local Tor daemon)
	Timeout     time.Duration // POOL_TIMEOUT (bounds every remote call)
}

// Config holds all configuration values for the application.
type Config struct {
	Matrix MatrixConfig
	Pool   PoolConfig

	// App
	DBPath string // SQLite path

	// Admin surface (health, metrics, session invalidation)
	AdminAddr string // ADMIN_ADDR; loopback by default
	GinMode   string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Matrix: MatrixConfig{
			HomeserverURL: getenv("MATRIX_HOMESERVER_URL", ""),
			UserID:        getenv("MATRIX_USER_ID", ""),
			Password:      getenv("MATRIX_PASSWORD", ""),
			ProxyURL:      getenv("MATRIX_PROXY", ""),
			DisplayName:   getenv("MATRIX_DISPLAY_NAME", "BraiinsPool Bot"),
		},
		Pool: PoolConfig{
			BaseURL:     getenv("POOL_BASE_URL", "https://pool.braiins.com"),
			SOCKS5Proxy: getenv("POOL_PROXY", ""),
			Timeout:     getdur("POOL_TIMEOUT", 30*time.Second),
		},

		DBPath: getenv("DB_PATH", "braiinspool-bot.db"),

		AdminAddr: getenv("ADMIN_ADDR", "127.0.0.1:9090"),
		GinMode:   strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.Matrix.HomeserverURL = strings.TrimRight(cfg.Matrix.HomeserverURL, "/")

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Matrix.HomeserverURL) == "" {
		return cfg, errors.New("MATRIX_HOMESERVER_URL must not be empty")
	}
	if !strings.HasPrefix(cfg.Matrix.UserID, "@") || !strings.Contains(cfg.Matrix.UserID, ":") {
		return cfg, errors.New("MATRIX_USER_ID must be a fully qualified Matrix ID (@user:server)")
	}
	if cfg.Matrix.Password == "" {
		return cfg, errors.New("MATRIX_PASSWORD must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Pool.Timeout <= 0 {
		return cfg, errors.New("POOL_TIMEOUT must be a positive duration")
	}
	if strings.TrimSpace(cfg.AdminAddr) == "" {
		return cfg, errors.New("ADMIN_ADDR must not be empty")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
