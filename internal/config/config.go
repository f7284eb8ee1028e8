package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Env      string `json:"env"`
	Port     int    `json:"port"`
	Host     string `json:"host"`
	LogLevel string `json:"log_level"`

	// Database configuration. DatabaseURL wins over the DB_* fields when set.
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Security Configuration
	JWTSecret      string        `json:"jwt_secret"`
	TokenTTL       time.Duration `json:"token_ttl"`
	RateLimitRPS   float64       `json:"rate_limit_rps"`
	RateLimitBurst int           `json:"rate_limit_burst"`

	// Media and links
	MediaRoot string `json:"media_root"`
	MediaURL  string `json:"media_url"`
	SiteURL   string `json:"site_url"`

	PageSize int `json:"page_size"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %d, Host: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], TokenTTL: %s, MediaRoot: %s, SiteURL: %s, PageSize: %d}",
		c.Env, c.Port, c.Host, maskDatabaseURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser,
		c.LogLevel, c.TokenTTL, c.MediaRoot, c.SiteURL, c.PageSize)
}

// Database returns the connection settings for the database package
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
		URL:      c.DatabaseURL,
	}
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig reads the configuration from environment variables and returns a Config struct.
// Malformed numbers and URLs are reported as errors; missing values fall back to defaults.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")

	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	ttlHours, err := strconv.Atoi(GetEnvWithDefault("TOKEN_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: must be a positive integer")
	}

	rps, err := strconv.ParseFloat(GetEnvWithDefault("RATE_LIMIT_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(GetEnvWithDefault("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	pageSize, err := strconv.Atoi(GetEnvWithDefault("PAGE_SIZE", "6"))
	if err != nil || pageSize <= 0 {
		return nil, fmt.Errorf("invalid PAGE_SIZE: must be a positive integer")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	siteURL := GetEnvWithDefault("SITE_URL", "http://localhost:8080")
	if _, err := url.ParseRequestURI(siteURL); err != nil {
		return nil, fmt.Errorf("invalid SITE_URL format: %w", err)
	}

	config := &Config{
		Env:            GetEnvWithDefault("APP_ENV", "development"),
		Port:           port,
		Host:           GetEnvWithDefault("APP_HOST", "localhost"),
		LogLevel:       GetEnvWithDefault("LOG_LEVEL", "info"),
		DatabaseURL:    dbURL,
		DBDriver:       GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:         GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", "foodgram"),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:         GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		JWTSecret:      GetEnvWithDefault("JWT_SECRET", "secret"),
		TokenTTL:       time.Duration(ttlHours) * time.Hour,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		MediaRoot:      GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:       GetEnvWithDefault("MEDIA_URL", "/media"),
		SiteURL:        siteURL,
		PageSize:       pageSize,
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return any(floatValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue
	}
}
