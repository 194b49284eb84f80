package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Addr      string
	StaticDir string
	LogLevel  string

	// Storage
	DataDir             string
	Store               string // "memory", "sqlite" or "postgres"
	DatabaseURL         string
	ElasticsearchURL    string
	ElasticsearchPrefix string
	ElasticsearchUser   string
	ElasticsearchPass   string

	// Table defaults
	StartingChips int64
	AISeats       int
	AIBet         int64
	Decks         int
	HitSoft17     bool

	// Housekeeping
	TableIdleTimeout time.Duration
	ReapInterval     time.Duration

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env
func FromEnv() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		Addr:                getEnvWithDefault("ADDR", ":8080"),
		StaticDir:           os.Getenv("STATIC_DIR"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		DataDir:             getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		Store:               getEnvWithDefault("STORE", StoreMemory),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ElasticsearchURL:    os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchPrefix: getEnvWithDefault("ELASTICSEARCH_INDEX_PREFIX", "blackjack"),
		ElasticsearchUser:   os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPass:   os.Getenv("ELASTICSEARCH_PASSWORD"),
	}

	if cfg.StartingChips, err = getInt64("STARTING_CHIPS", 1000); err != nil {
		return nil, err
	}
	if cfg.AISeats, err = getInt("AI_SEATS", 0); err != nil {
		return nil, err
	}
	if cfg.AIBet, err = getInt64("AI_BET", 10); err != nil {
		return nil, err
	}
	if cfg.Decks, err = getInt("DECKS", 6); err != nil {
		return nil, err
	}
	if cfg.HitSoft17, err = getBool("HIT_SOFT_17", true); err != nil {
		return nil, err
	}
	if cfg.TableIdleTimeout, err = getDuration("TABLE_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReapInterval, err = getDuration("REAP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.StartingChips <= 0 {
		return fmt.Errorf("STARTING_CHIPS must be positive")
	}
	if c.AISeats < 0 || c.AISeats > 6 {
		return fmt.Errorf("AI_SEATS must be between 0 and 6")
	}
	if c.AIBet <= 0 {
		return fmt.Errorf("AI_BET must be positive")
	}
	if c.Decks < 1 || c.Decks > 8 {
		return fmt.Errorf("DECKS must be between 1 and 8")
	}
	if c.TableIdleTimeout <= 0 || c.ReapInterval <= 0 {
		return fmt.Errorf("TABLE_IDLE_TIMEOUT and REAP_INTERVAL must be positive")
	}
	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
