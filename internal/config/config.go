// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Search   SearchConfig
	Keywords KeywordsConfig
	Voting   VotingDefaults
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// AdminToken guards the admin endpoints. Empty disables them.
	AdminToken string
}

// DatabaseConfig holds SQLite database configuration.
type DatabaseConfig struct {
	// Path is the SQLite database file (default: {data}/jumpchain.db).
	Path string
	// DataPath is the base directory for application data.
	DataPath string
}

// SearchConfig holds search subsystem configuration.
type SearchConfig struct {
	// MaxQueryLength caps the raw search string (default: 200).
	MaxQueryLength int
	// DefaultPageSize used when a request omits page size (default: 50).
	DefaultPageSize int
	// MaxPageSize caps the page size a request may ask for (default: 200).
	MaxPageSize int
}

// KeywordsConfig holds keyword table configuration.
type KeywordsConfig struct {
	// Path to the YAML keyword tables file. Empty disables file-backed
	// keywords and falls back to the built-in defaults.
	Path string
	// Watch enables hot reloading of the keyword file (default: true).
	Watch bool
}

// VotingDefaults seeds the voting configuration row on first startup.
// After that, the values are managed through the admin API.
type VotingDefaults struct {
	MinimumVotesRequired int
	AgreementPercentage  float64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	adminToken := flag.String("admin-token", "", "Bearer token for admin endpoints (empty disables them)")

	dataPath := flag.String("data-path", "", "Base path for application data")
	dbPath := flag.String("db-path", "", "SQLite database file (default: {data}/jumpchain.db)")

	keywordsPath := flag.String("keywords-path", "", "Path to keyword tables YAML file")
	keywordsWatch := flag.String("keywords-watch", "", "Hot reload keyword file on change (default: true)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:       getConfigValue(*serverName, "SERVER_NAME", "JumpChain Search"),
			Port:       getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdminToken: getConfigValue(*adminToken, "ADMIN_TOKEN", ""),
		},
		Database: DatabaseConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			Path:     getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Search: SearchConfig{
			MaxQueryLength:  getIntConfigValue("", "SEARCH_MAX_QUERY_LENGTH", 200),
			DefaultPageSize: getIntConfigValue("", "SEARCH_DEFAULT_PAGE_SIZE", 50),
			MaxPageSize:     getIntConfigValue("", "SEARCH_MAX_PAGE_SIZE", 200),
		},
		Keywords: KeywordsConfig{
			Path:  getConfigValue(*keywordsPath, "KEYWORDS_PATH", ""),
			Watch: getBoolConfigValue(*keywordsWatch, "KEYWORDS_WATCH", true),
		},
		Voting: VotingDefaults{
			MinimumVotesRequired: getIntConfigValue("", "VOTING_MINIMUM_VOTES", 50),
			AgreementPercentage:  getFloatConfigValue("", "VOTING_AGREEMENT_PERCENTAGE", 70.0),
		},
	}

	// Parse server timeouts.
	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
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
		return errors.New("database path cannot be empty after expansion")
	}

	if c.Search.MaxQueryLength < 1 {
		return fmt.Errorf("search max query length must be positive, got %d", c.Search.MaxQueryLength)
	}
	if c.Search.DefaultPageSize < 1 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search default page size %d must be in [1, %d]", c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}

	if c.Voting.MinimumVotesRequired < 1 {
		return fmt.Errorf("voting minimum votes must be positive, got %d", c.Voting.MinimumVotesRequired)
	}
	if c.Voting.AgreementPercentage <= 0 || c.Voting.AgreementPercentage > 100 {
		return fmt.Errorf("voting agreement percentage %v must be in (0, 100]", c.Voting.AgreementPercentage)
	}

	return nil
}

// expandDataPaths resolves the data directory and database file path.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultData := filepath.Join(homeDir, "JumpChainSearch", "data")

	expanded, err := expandPath(c.Database.DataPath, defaultData)
	if err != nil {
		return err
	}
	c.Database.DataPath = expanded

	dbDefault := filepath.Join(c.Database.DataPath, "jumpchain.db")
	c.Database.Path, err = expandPath(c.Database.Path, dbDefault)
	if err != nil {
		return err
	}

	if c.Keywords.Path != "" {
		c.Keywords.Path, err = expandPath(c.Keywords.Path, "")
		if err != nil {
			return err
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
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

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration setting with the usual precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
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

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real env vars take precedence over .env file entries.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
