package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// BaseURL is the root of the remote meal-ordering service.
	BaseURL string
	// APIPrefix is prepended to every endpoint path (e.g. "/api/v1").
	APIPrefix string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Debug enables request/response logging.
	Debug bool
	// AddonQuantityCap bounds the per-addon max_quantity an admin may
	// configure on a meal.
	AddonQuantityCap int
}

// Load reads configuration from the environment, with a .env file as
// fallback when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:          getEnv("MEAL_API_BASE_URL", "http://localhost:8000"),
		APIPrefix:        getEnv("MEAL_API_PREFIX", ""),
		Timeout:          getEnvDuration("MEAL_API_TIMEOUT", 10*time.Second),
		Debug:            getEnvBool("MEAL_DEBUG", false),
		AddonQuantityCap: getEnvInt("MEAL_ADDON_QUANTITY_CAP", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
