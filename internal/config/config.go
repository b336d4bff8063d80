package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sales_dashboard/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppVersion    string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// Redis is optional; rate limiting falls back to in-process and the
	// dashboard summary is not cached when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	DashboardCacheTTL    time.Duration
	DashboardRefreshCron string
}

// Load reads configuration from the environment (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	cfg, missing := FromEnv(os.Getenv)
	for _, key := range missing {
		logger.Fatal(key + " is not set")
	}
	return cfg
}

// FromEnv builds a Config from getenv, returning the names of required keys that are unset.
func FromEnv(getenv func(string) string) (*Config, []string) {
	var missing []string

	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	port := getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	refreshCron := getenv("DASHBOARD_REFRESH_CRON")
	if refreshCron == "" {
		refreshCron = "@every 1m"
	}

	return &Config{
		AppPort:       port,
		AppVersion:    version,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		JWTTTL:        time.Duration(positiveInt(getenv("JWT_TTL_HOURS"), 24)) * time.Hour,
		AllowedOrigin: strings.TrimSpace(getenv("ALLOWED_ORIGIN")),

		LogLevel: logLevel,
		LogJSON:  getenv("LOG_JSON") == "true",

		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       nonNegativeInt(getenv("REDIS_DB"), 0),

		APIRateLimit:   positiveInt(getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:  time.Duration(positiveInt(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		AuthRateLimit:  positiveInt(getenv("AUTH_RATE_LIMIT"), 5),
		AuthRateWindow: time.Duration(positiveInt(getenv("AUTH_RATE_WINDOW_SECONDS"), 60)) * time.Second,

		DashboardCacheTTL:    time.Duration(positiveInt(getenv("DASHBOARD_CACHE_TTL_SECONDS"), 30)) * time.Second,
		DashboardRefreshCron: refreshCron,
	}, missing
}

func positiveInt(v string, def int) int {
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}

func nonNegativeInt(v string, def int) int {
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	return def
}
