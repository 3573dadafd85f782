package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"hoops_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// Redis backs the live snapshot cache and rate limiting. Empty disables both.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	// Rating
	KBase           float64
	SplitTeamChange bool
	DefaultRating   float64

	// Limits
	APIRateLimit    int
	APIRateWindow   time.Duration
	EventRateLimit  int
	EventRateWindow time.Duration
}

// Load reads the config from env (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	return &Config{
		AppPort:       envString("APP_PORT", "8080"),
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  envBool("LOG_JSON", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		SnapshotTTL:   envSeconds("SNAPSHOT_TTL_SECONDS", 6*time.Hour),

		KBase:           envFloat("RATING_K_BASE", 6),
		SplitTeamChange: envBool("TEAM_SPLIT_CHANGE", false),
		DefaultRating:   envFloat("DEFAULT_RATING", 1000),

		APIRateLimit:    envInt("API_RATE_LIMIT", 120),
		APIRateWindow:   envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		EventRateLimit:  envInt("EVENT_RATE_LIMIT", 240),
		EventRateWindow: envSeconds("EVENT_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt ignores values that are not positive integers.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring bad int env", "key", key, "value", v)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && !math.IsInf(f, 0) {
			return f
		}
		logger.Warn("ignoring bad float env", "key", key, "value", v)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
