package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/open-insights/course-analytics/analytics"
)

const (
	defaultAPIBaseURL     = "http://localhost:9001/api/v0"
	defaultDBPath         = "./analytics.db"
	defaultRetentionDays  = 30
	defaultBackfillDays   = 30
	defaultRateLimit      = 10.0 // requests per second
	defaultMaxConcurrency = 5
	defaultHTTPTimeout    = 30 * time.Second
)

// Config holds application configuration.
type Config struct {
	APIBaseURL     string
	AuthToken      string
	Courses        []string
	Demographics   []analytics.Demographic
	RosterURL      string
	DBPath         string
	RetentionDays  int
	BackfillDays   int
	RateLimit      float64
	MaxConcurrency int
	HTTPTimeout    time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	demographics, err := analytics.ParseDemographics(os.Getenv("ANALYTICS_DEMOGRAPHICS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:     getEnv("ANALYTICS_API_BASE_URL", defaultAPIBaseURL),
		AuthToken:      os.Getenv("ANALYTICS_AUTH_TOKEN"),
		Courses:        splitList(os.Getenv("ANALYTICS_COURSES")),
		Demographics:   demographics,
		RosterURL:      os.Getenv("ANALYTICS_ROSTER_URL"),
		DBPath:         getEnv("ANALYTICS_DB_PATH", defaultDBPath),
		RetentionDays:  getEnvInt("ANALYTICS_DATA_RETENTION_DAYS", defaultRetentionDays),
		BackfillDays:   getEnvInt("ANALYTICS_BACKFILL_DAYS", defaultBackfillDays),
		RateLimit:      getEnvFloat("ANALYTICS_RATE_LIMIT", defaultRateLimit),
		MaxConcurrency: getEnvInt("ANALYTICS_MAX_CONCURRENCY", defaultMaxConcurrency),
		HTTPTimeout:    getEnvDuration("ANALYTICS_HTTP_TIMEOUT", defaultHTTPTimeout),
	}, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if str := os.Getenv(key); str != "" {
		if val, err := strconv.Atoi(str); err == nil && val > 0 {
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if str := os.Getenv(key); str != "" {
		if val, err := strconv.ParseFloat(str, 64); err == nil && val > 0 {
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if str := os.Getenv(key); str != "" {
		if seconds, err := strconv.Atoi(str); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
