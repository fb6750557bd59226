// Package config loads service settings from environment variables with
// validated defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Satellite data (ERDDAP-style API) configuration.
	ERDDAPBaseURL   string
	ERDDAPTimeout   time.Duration
	ERDDAPCacheSize int

	// Marine weather forecast configuration.
	OpenMeteoBaseURL string
	OpenMeteoTimeout time.Duration
	ForecastDays     int

	// Typhoon feed configuration (optional).
	TyphoonFeedURL string
	TyphoonEnabled bool
	TyphoonTimeout time.Duration

	// Prediction defaults.
	DefaultVessel  string
	GridResolution float64

	// Kafka alert publishing (optional).
	KafkaBrokers        []string
	KafkaAlertTopic     string
	AlertsEnabled       bool
	AlertScoreThreshold float64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	erddapTimeout, err := parseDuration("ERDDAP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	openMeteoTimeout, err := parseDuration("OPENMETEO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	typhoonTimeout, err := parseDuration("TYPHOON_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	forecastDays, err := parseInt("FORECAST_DAYS", 3, 1, 16)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("ERDDAP_CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	gridResolution, err := parseFloat("GRID_RESOLUTION", 0.5)
	if err != nil {
		return nil, err
	}
	if gridResolution <= 0 || gridResolution > 10 {
		return nil, errors.New("GRID_RESOLUTION must be in (0, 10] degrees")
	}

	alertThreshold, err := parseFloat("ALERT_SCORE_THRESHOLD", 80)
	if err != nil {
		return nil, err
	}
	if alertThreshold < 0 || alertThreshold > 100 {
		return nil, errors.New("ALERT_SCORE_THRESHOLD must be in [0, 100]")
	}

	typhoonFeedURL := os.Getenv("TYPHOON_FEED_URL")
	typhoonEnabled := typhoonFeedURL != ""
	if v := os.Getenv("TYPHOON_ENABLED"); v != "" {
		typhoonEnabled = v == "true"
	}

	alertsEnabled := false
	if v := os.Getenv("KAFKA_ALERTS_ENABLED"); v != "" {
		alertsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ERDDAPBaseURL:   envOrDefault("ERDDAP_BASE_URL", "https://coastwatch.pfeg.noaa.gov/erddap"),
		ERDDAPTimeout:   erddapTimeout,
		ERDDAPCacheSize: cacheSize,

		OpenMeteoBaseURL: envOrDefault("OPENMETEO_BASE_URL", "https://api.open-meteo.com"),
		OpenMeteoTimeout: openMeteoTimeout,
		ForecastDays:     forecastDays,

		TyphoonFeedURL: typhoonFeedURL,
		TyphoonEnabled: typhoonEnabled,
		TyphoonTimeout: typhoonTimeout,

		DefaultVessel:  envOrDefault("DEFAULT_VESSEL", "longline"),
		GridResolution: gridResolution,

		KafkaBrokers:        parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic:     envOrDefault("KAFKA_ALERT_TOPIC", "pfz-alerts"),
		AlertsEnabled:       alertsEnabled,
		AlertScoreThreshold: alertThreshold,
	}

	if cfg.ERDDAPBaseURL == "" {
		return nil, errors.New("ERDDAP_BASE_URL is required")
	}
	if cfg.OpenMeteoBaseURL == "" {
		return nil, errors.New("OPENMETEO_BASE_URL is required")
	}
	if cfg.TyphoonEnabled && cfg.TyphoonFeedURL == "" {
		return nil, errors.New("TYPHOON_ENABLED is true but TYPHOON_FEED_URL is not set")
	}
	if cfg.AlertsEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ALERTS_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAlertTopic == "" {
			return nil, errors.New("KAFKA_ALERTS_ENABLED is true but KAFKA_ALERT_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback, minVal, maxVal int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", key, minVal, maxVal)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
