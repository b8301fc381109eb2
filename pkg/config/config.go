package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds the service configuration
type Config struct {
	Environment string
	Port        string

	// Stores
	PostgresDSN string
	RedisURL    string

	// Session tokens (minted by the external auth service)
	JWTSecret string

	// Exchange compliance policy. Grace windows live on each exchange
	// instance; this only bounds how long past grace an instance may stay
	// unresolved.
	MissedCutoffMinutes int

	// Cron expression for the durable overdue sweep; empty disables it
	FinalizeSchedule string

	// CORS
	AllowedOrigins []string

	Debug bool
}

// LoadConfig reads configuration from the environment, loading a .env file
// for the current environment first.
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		Port:                getEnvWithDefault("PORT", "3000"),
		JWTSecret:           getEnvWithDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		MissedCutoffMinutes: getEnvInt("MISSED_CUTOFF_MINUTES", 120),
		FinalizeSchedule:    strings.TrimSpace(os.Getenv("FINALIZE_SCHEDULE")),
		Debug:               getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	config.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		config.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	if config.Environment == "production" {
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per process)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks the configuration for obvious misconfiguration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		fmt.Println("WARNING: using default JWT secret (not recommended for production)")
	}

	if c.Environment == "production" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN must be set in production")
	}

	if c.MissedCutoffMinutes < 0 {
		return fmt.Errorf("missed-cutoff minutes must not be negative")
	}

	return nil
}

// IsProduction checks whether this is the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment checks whether this is the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault reads an env var, falling back to a default
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean env var
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt reads an integer env var
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads KEY=VALUE pairs from a .env file into the environment,
// without overriding variables that are already set.
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return
	}

	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
