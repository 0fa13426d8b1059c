package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL      = "http://localhost:8000/api/v1"
	defaultStateDSN    = "portal_state.db"
	defaultHTTPTimeout = "10s"
	defaultTimezone    = "America/Lima"
	defaultMockAddr    = ":8000"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
	defaultLogLevel    = "info"
)

// Lima has no DST; used when the tz database is not available on the host.
var limaFallback = time.FixedZone("PET", -5*60*60)

type Config struct {
	AppEnv      string
	LogLevel    string
	APIBaseURL  string
	StateDSN    string
	Ephemeral   bool
	HTTPTimeout time.Duration
	Location    *time.Location
	ScannerURL  string

	MockAddr     string
	JWTSecret    string
	JWTAccessTTL time.Duration
	CORSOrigins  string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PORTAL_API_URL", defaultAPIURL)), "/")
	cfg.StateDSN = strings.TrimSpace(getEnv("PORTAL_STATE_DSN", defaultStateDSN))
	cfg.Ephemeral = parseBoolEnv("PORTAL_EPHEMERAL", "false")
	cfg.ScannerURL = strings.TrimSpace(os.Getenv("PORTAL_SCANNER_URL"))
	cfg.MockAddr = strings.TrimSpace(getEnv("MOCKAPI_ADDR", defaultMockAddr))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSOrigins = strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.HTTPTimeout, err = parseDurationEnv("PORTAL_HTTP_TIMEOUT", defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.Location = loadLocation(strings.TrimSpace(getEnv("PORTAL_TIMEZONE", defaultTimezone)))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("PORTAL_API_URL must not be empty")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("PORTAL_API_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("PORTAL_HTTP_TIMEOUT must be > 0")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.ScannerURL != "" && !strings.HasPrefix(cfg.ScannerURL, "ws://") && !strings.HasPrefix(cfg.ScannerURL, "wss://") {
		return fmt.Errorf("PORTAL_SCANNER_URL must be a ws(s) URL, got %q", cfg.ScannerURL)
	}
	if isProdLike(cfg.AppEnv) {
		if !strings.HasPrefix(cfg.APIBaseURL, "https://") {
			return fmt.Errorf("in prod/release PORTAL_API_URL must use https")
		}
	}
	return nil
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC-5", "timezone", name, "error", err)
		return limaFallback
	}
	return loc
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
