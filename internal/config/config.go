package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Errors returned by Load for required settings.
var (
	ErrMissingJWTSecret     = errors.New("JWT_SECRET is required")
	ErrMissingEncryptionKey = errors.New("ENCRYPTION_KEY is required")
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Auth       AuthConfig
	Encryption EncryptionConfig
	Log        LogConfig
	Jobs       JobsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds token, login and bootstrap settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	// LoginRateLimit is the number of login attempts allowed per client IP per minute.
	LoginRateLimit int
	AdminUsername  string
	AdminPassword  string
}

// EncryptionConfig holds the fernet key used for buyer contact details.
type EncryptionConfig struct {
	Key string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// JobsConfig holds cron schedules of background jobs.
type JobsConfig struct {
	SessionPurgeSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	ttl, err := getEnvDuration("ACCESS_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/sidesales.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			AccessTokenTTL: ttl,
			LoginRateLimit: rateLimit,
			AdminUsername:  os.Getenv("ADMIN_USERNAME"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		},
		Encryption: EncryptionConfig{
			Key: os.Getenv("ENCRYPTION_KEY"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Jobs: JobsConfig{
			SessionPurgeSchedule: getEnv("SESSION_PURGE_SCHEDULE", "@hourly"),
		},
	}

	if config.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if config.Encryption.Key == "" {
		return nil, ErrMissingEncryptionKey
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
	}
	return n, nil
}
