package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://coastwatch.pfeg.noaa.gov/erddap", cfg.ERDDAPBaseURL)
	assert.Equal(t, 10*time.Second, cfg.ERDDAPTimeout)
	assert.Equal(t, 1000, cfg.ERDDAPCacheSize)
	assert.Equal(t, "https://api.open-meteo.com", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 3, cfg.ForecastDays)
	assert.False(t, cfg.TyphoonEnabled)
	assert.Empty(t, cfg.TyphoonFeedURL)
	assert.Equal(t, "longline", cfg.DefaultVessel)
	assert.Equal(t, 0.5, cfg.GridResolution)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "pfz-alerts", cfg.KafkaAlertTopic)
	assert.False(t, cfg.AlertsEnabled)
	assert.Equal(t, 80.0, cfg.AlertScoreThreshold)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("ERDDAP_BASE_URL", "http://erddap.local")
	t.Setenv("ERDDAP_TIMEOUT", "20s")
	t.Setenv("ERDDAP_CACHE_SIZE", "500")
	t.Setenv("OPENMETEO_BASE_URL", "http://meteo.local")
	t.Setenv("FORECAST_DAYS", "7")
	t.Setenv("TYPHOON_FEED_URL", "http://typhoon.local/feed")
	t.Setenv("DEFAULT_VESSEL", "purse_seine")
	t.Setenv("GRID_RESOLUTION", "0.25")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ALERT_TOPIC", "custom-alerts")
	t.Setenv("KAFKA_ALERTS_ENABLED", "true")
	t.Setenv("ALERT_SCORE_THRESHOLD", "70")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://erddap.local", cfg.ERDDAPBaseURL)
	assert.Equal(t, 20*time.Second, cfg.ERDDAPTimeout)
	assert.Equal(t, 500, cfg.ERDDAPCacheSize)
	assert.Equal(t, "http://meteo.local", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 7, cfg.ForecastDays)
	assert.True(t, cfg.TyphoonEnabled, "feed URL implies enabled")
	assert.Equal(t, "purse_seine", cfg.DefaultVessel)
	assert.Equal(t, 0.25, cfg.GridResolution)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-alerts", cfg.KafkaAlertTopic)
	assert.True(t, cfg.AlertsEnabled)
	assert.Equal(t, 70.0, cfg.AlertScoreThreshold)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidForecastDays(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_DAYS")
}

func TestLoad_ForecastDaysTooLarge(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "99")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_DAYS")
}

func TestLoad_InvalidGridResolution(t *testing.T) {
	t.Setenv("GRID_RESOLUTION", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRID_RESOLUTION")
}

func TestLoad_InvalidAlertThreshold(t *testing.T) {
	t.Setenv("ALERT_SCORE_THRESHOLD", "120")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALERT_SCORE_THRESHOLD")
}

func TestLoad_TyphoonEnabledWithoutURL(t *testing.T) {
	t.Setenv("TYPHOON_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TYPHOON_FEED_URL")
}

func TestLoad_TyphoonExplicitlyDisabled(t *testing.T) {
	t.Setenv("TYPHOON_FEED_URL", "http://typhoon.local/feed")
	t.Setenv("TYPHOON_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TyphoonEnabled)
}

func TestLoad_AlertsEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ALERTS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
