// Package config provides CLI configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brainstemapp/brainstem/joplin"
)

// Config holds the CLI configuration.
type Config struct {
	Joplin JoplinConfig
	Logger LoggerConfig
}

// JoplinConfig holds Data API connection configuration.
type JoplinConfig struct {
	BaseURL  string        // Data API base URL (default: http://localhost:41184)
	Token    string        // API token; obtained via `brainstem auth` when empty
	PageSize int           // Items per page for list requests (default: 100)
	Timeout  time.Duration // Per-request timeout (default: 30s)
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string
}

// Flags are the raw command-line flag values, parsed by the caller.
// Empty strings mean "not set" so the flag falls through to the
// environment and the .env file.
type Flags struct {
	BaseURL  string
	Token    string
	PageSize string
	Timeout  string
	LogLevel string
	EnvFile  string
}

// Load builds configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(flags Flags) (*Config, error) {
	// Load the .env file first so its values are visible as environment
	// variables to the lookups below. A missing file is fine.
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		Joplin: JoplinConfig{
			BaseURL:  getConfigValue(flags.BaseURL, "BRAINSTEM_BASE_URL", joplin.DefaultBaseURL),
			Token:    getConfigValue(flags.Token, "BRAINSTEM_TOKEN", ""),
			PageSize: getIntConfigValue(flags.PageSize, "BRAINSTEM_PAGE_SIZE", joplin.DefaultPageSize),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(flags.LogLevel, "BRAINSTEM_LOG_LEVEL", "info"),
			Format: getConfigValue("", "BRAINSTEM_LOG_FORMAT", "pretty"),
		},
	}

	timeout, err := getDurationConfigValue(flags.Timeout, "BRAINSTEM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Joplin.Timeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Joplin.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.Joplin.BaseURL, "http://") && !strings.HasPrefix(c.Joplin.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://, got %s", c.Joplin.BaseURL)
	}
	if c.Joplin.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Joplin.PageSize)
	}
	if c.Joplin.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Joplin.Timeout)
	}
	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}
	return nil
}

// getConfigValue returns a value with precedence: flag > env var > default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue returns a duration from flag, env var, or default.
// A bare number is rejected; values need a unit like "30s" or "1m".
func getDurationConfigValue(flagValue, envKey string, defaultValue time.Duration) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
