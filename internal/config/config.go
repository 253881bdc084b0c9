package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Remote GraphQL endpoint
	APIURL string

	// HTTP transport
	RequestTimeout time.Duration

	// Local state
	DataDir      string
	PrefsDBPath  string
	SecureDir    string

	// Dashboard
	PersistDebounce time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	dataDir := getEnv("FINANZ_DATA_DIR", defaultDataDir())

	cfg := &Config{
		APIURL:         getEnv("FINANZ_API_URL", "http://localhost:4000/graphql"),
		RequestTimeout: getEnvDuration("FINANZ_REQUEST_TIMEOUT", 30*time.Second),

		DataDir:     dataDir,
		PrefsDBPath: getEnv("FINANZ_PREFS_DB_PATH", filepath.Join(dataDir, "prefs.db")),
		SecureDir:   getEnv("FINANZ_SECURE_DIR", filepath.Join(dataDir, "secure")),

		PersistDebounce: getEnvDuration("FINANZ_PERSIST_DEBOUNCE", 800*time.Millisecond),

		LogLevel: getEnv("FINANZ_LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API endpoint
	if c.APIURL == "" {
		errors = append(errors, "API URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	// Validate preference database path
	if c.PrefsDBPath == "" {
		errors = append(errors, "preference database path cannot be empty")
	} else {
		dir := filepath.Dir(c.PrefsDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create preference database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate secure storage directory
	if c.SecureDir == "" {
		errors = append(errors, "secure storage directory cannot be empty")
	} else {
		if _, err := os.Stat(c.SecureDir); os.IsNotExist(err) {
			if err := os.MkdirAll(c.SecureDir, 0700); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create secure storage directory '%s': %v", c.SecureDir, err))
			}
		}
	}

	if c.PersistDebounce < 50*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid persist debounce %v: must be at least 50ms", c.PersistDebounce))
	} else if c.PersistDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid persist debounce %v: must be at most 1 minute", c.PersistDebounce))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".finanz")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
