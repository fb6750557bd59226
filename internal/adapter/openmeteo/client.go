// Package openmeteo fetches marine weather forecasts from the Open-Meteo
// family of model APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

// defaultMarineBaseURL hosts the wave model; it lives on a separate
// subdomain from the atmospheric forecast API.
const defaultMarineBaseURL = "https://marine-api.open-meteo.com"

// Client fetches wind, precipitation, visibility, and wave forecasts. It
// implements the predictor's weather source interface.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	marineBaseURL string
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewClient creates an Open-Meteo client against the given forecast base
// URL, using the public marine endpoint for wave data.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:       baseURL,
		marineBaseURL: defaultMarineBaseURL,
		metrics:       metrics,
		logger:        logger,
	}
}

// Benign per-series defaults: a moderate 10 m/s breeze for wind, optimal
// values for the rest. A model dropping one column must not sink the
// whole forecast.
const (
	defaultWindSpeedMS      = 10.0
	defaultWaveHeightM      = 1.5
	defaultVisibilityM      = 10000.0
	defaultPrecipitationMMH = 0.0
)

// FetchForecast returns weather inputs averaged over the first forecast
// days of hourly data. Any series the models fail to provide falls back
// to its benign default; wave height additionally tolerates the marine
// endpoint being down entirely.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64, days int) (domain.WeatherInputs, error) {
	if days < 1 {
		days = 1
	}

	hourly, err := c.fetchHourly(ctx, "weather", c.baseURL+"/v1/forecast", lat, lon, days,
		"wind_speed_10m,precipitation,visibility")
	if err != nil {
		return domain.WeatherInputs{}, err
	}

	hours := days * 24
	precip := valueOr(meanOf(hourly.Precipitation, hours), defaultPrecipitationMMH)
	vis := valueOr(meanOf(hourly.Visibility, hours), defaultVisibilityM)
	wave := defaultWaveHeightM

	marine, err := c.fetchHourly(ctx, "wave", c.marineBaseURL+"/v1/marine", lat, lon, days, "wave_height")
	if err != nil {
		c.logger.Debug("marine fetch failed", "error", err)
	} else {
		wave = valueOr(meanOf(marine.WaveHeight, hours), defaultWaveHeightM)
	}

	return domain.WeatherInputs{
		WindSpeed:     valueOr(meanOf(hourly.WindSpeed, hours), defaultWindSpeedMS),
		WaveHeight:    &wave,
		Visibility:    &vis,
		Precipitation: &precip,
	}, nil
}

func (c *Client) fetchHourly(ctx context.Context, source, endpoint string, lat, lon float64, days int, variables string) (hourlyBlock, error) {
	params := url.Values{
		"latitude":        {fmt.Sprintf("%.4f", lat)},
		"longitude":       {fmt.Sprintf("%.4f", lon)},
		"hourly":          {variables},
		"forecast_days":   {fmt.Sprintf("%d", days)},
		"wind_speed_unit": {"ms"},
		"timezone":        {"UTC"},
	}

	started := time.Now()
	block, err := c.doRequest(ctx, endpoint+"?"+params.Encode())
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.FetchRequests.WithLabelValues(source, outcome).Inc()
		c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	}
	return block, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (hourlyBlock, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return hourlyBlock{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hourlyBlock{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return hourlyBlock{}, fmt.Errorf("open-meteo error: status %d: %s", resp.StatusCode, body)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return hourlyBlock{}, fmt.Errorf("decode response: %w", err)
	}
	return fr.Hourly, nil
}

// valueOr unwraps a mean, substituting the fallback for an absent series.
func valueOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

// meanOf averages up to n leading entries, skipping nulls. Returns nil
// when the series is absent or entirely null.
func meanOf(values []*float64, n int) *float64 {
	if len(values) < n {
		n = len(values)
	}
	var sum float64
	var count int
	for _, v := range values[:n] {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// Open-Meteo API response types. Hourly series carry nulls where a model
// has no value.

type forecastResponse struct {
	Hourly hourlyBlock `json:"hourly"`
}

type hourlyBlock struct {
	Time          []string   `json:"time"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
	Precipitation []*float64 `json:"precipitation"`
	Visibility    []*float64 `json:"visibility"`
	WaveHeight    []*float64 `json:"wave_height"`
}
