// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// IsProduction reports whether the server runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level      string
	File       string // rotating log file; empty logs to stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 3001)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	Origins []string
}

// RateLimitConfig throttles /api/ requests per client IP.
type RateLimitConfig struct {
	Enabled  bool
	Requests int           // requests allowed per window (default: 100)
	Window   time.Duration // refill window (default: 15m)
	Burst    int           // immediate allowance (default: Requests)
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled bool
	Path    string // index directory; empty keeps the index in memory
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args excludes the program name.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("loveletters", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Rotating log file path (default: stdout only)")
	dbPath := fs.String("db-path", "", "SQLite database path (default: ./data/letters.db)")
	serverPort := fs.String("port", "", "Server port (default: 3001)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigin := fs.String("cors-origin", "", "Comma-separated allowed origins (default: http://localhost:5173)")
	rateLimitEnabled := fs.String("rate-limit", "", "Enable per-IP rate limiting (default: true)")
	rateLimitRequests := fs.String("rate-limit-requests", "", "Requests per window (default: 100)")
	rateLimitWindow := fs.String("rate-limit-window", "", "Rate limit window (default: 15m)")
	searchEnabled := fs.String("search", "", "Enable full-text search (default: true)")
	searchPath := fs.String("search-path", "", "Search index directory (default: in memory)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine; godotenv never overrides variables
	// already present in the environment.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			File:  getConfigValue(*logFile, "LOG_FILE", ""),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", filepath.Join(".", "data", "letters.db")),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "PORT", "3001"),
		},
		CORS: CORSConfig{
			Origins: splitList(getConfigValue(*corsOrigin, "CORS_ORIGIN", "http://localhost:5173")),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolConfigValue(*rateLimitEnabled, "RATE_LIMIT_ENABLED", true),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
			Path:    getConfigValue(*searchPath, "SEARCH_PATH", ""),
		},
	}

	var err error
	if cfg.Logger.MaxSizeMB, err = getIntConfigValue("", "LOG_MAX_SIZE_MB", 10); err != nil {
		return nil, err
	}
	if cfg.Logger.MaxBackups, err = getIntConfigValue("", "LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}
	if cfg.Logger.MaxAgeDays, err = getIntConfigValue("", "LOG_MAX_AGE_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Requests, err = getIntConfigValue(*rateLimitRequests, "RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getIntConfigValue("", "RATE_LIMIT_BURST", cfg.RateLimit.Requests); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Window, err = getDurationConfigValue(*rateLimitWindow, "RATE_LIMIT_WINDOW", "15m"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if cfg.Database.Path, err = expandPath(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	if cfg.Search.Path, err = expandPath(cfg.Search.Path); err != nil {
		return nil, fmt.Errorf("invalid search path: %w", err)
	}
	if cfg.Logger.File, err = expandPath(cfg.Logger.File); err != nil {
		return nil, fmt.Errorf("invalid log file path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate limit requests must be positive, got %d", c.RateLimit.Requests)
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimit.Window)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimit.Burst)
		}
	}

	if c.Logger.File != "" && (c.Logger.MaxSizeMB <= 0 || c.Logger.MaxBackups < 0 || c.Logger.MaxAgeDays < 0) {
		return errors.New("log rotation limits must be positive")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// expandPath expands ~ and makes the path absolute. Empty stays empty.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
