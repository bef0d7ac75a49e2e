package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load
const (
	EnvDBPath        = "BOOKMARKS_DB_PATH"
	EnvListenAddr    = "BOOKMARKS_LISTEN_ADDR"
	EnvBackendURL    = "BOOKMARKS_BACKEND_URL"
	EnvAdminPassword = "BOOKMARKS_ADMIN_PASSWORD"
	EnvSessionDir    = "BOOKMARKS_SESSION_DIR"
	EnvSessionTTL    = "BOOKMARKS_SESSION_TTL"
	EnvLogLevel      = "BOOKMARKS_LOG_LEVEL"
	EnvLogFile       = "BOOKMARKS_LOG_FILE"
)

// Config holds application configuration
type Config struct {
	DBPath        string
	ListenAddr    string
	BackendURL    string
	AdminPassword string
	// SessionDir is the badger directory for sessions; empty keeps them in memory
	SessionDir string
	SessionTTL time.Duration
	LogLevel   string
	LogFile    string
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		DBPath:     getDefaultDBPath(),
		ListenAddr: ":8080",
		BackendURL: "http://localhost:8080",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
	}
}

// Load returns the defaults overridden by an optional .env file and the environment
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()
	return NewConfig().FromEnv()
}

// FromEnv applies the BOOKMARKS_* variables that are set
func (c *Config) FromEnv() (*Config, error) {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv(EnvSessionDir); v != "" {
		c.SessionDir = v
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSessionTTL, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", EnvSessionTTL)
		}
		c.SessionTTL = ttl
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	return c, nil
}

// WithDBPath sets a custom database path
func (c *Config) WithDBPath(path string) *Config {
	c.DBPath = path
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.ListenAddr = addr
	return c
}

func (c *Config) WithBackendURL(url string) *Config {
	c.BackendURL = url
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

func (c *Config) WithLogFile(path string) *Config {
	c.LogFile = path
	return c
}

// EnsureDBDir creates the directory holding the database file
func (c *Config) EnsureDBDir() error {
	dir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func getDefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "dashboard.db"
	}
	return filepath.Join(homeDir, ".bookmarks", "dashboard.db")
}
