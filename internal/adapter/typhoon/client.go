// Package typhoon reads active-storm positions from a JSON feed, such as
// a relay of the JMA or JTWC advisories.
package typhoon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

// Client fetches active storms. It implements the predictor's typhoon
// source interface. The category reported by the feed is ignored in favor
// of classification from max wind, so mixed-agency feeds stay consistent.
type Client struct {
	httpClient *http.Client
	feedURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a typhoon feed client.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL: feedURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ActiveTyphoons returns the storms currently tracked by the feed.
func (c *Client) ActiveTyphoons(ctx context.Context) ([]domain.TyphoonInfo, error) {
	started := time.Now()
	storms, err := c.fetch(ctx)
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.FetchRequests.WithLabelValues("typhoon", outcome).Inc()
		c.metrics.FetchDuration.WithLabelValues("typhoon").Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("typhoon feed", "active", len(storms))
	return storms, nil
}

func (c *Client) fetch(ctx context.Context) ([]domain.TyphoonInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("typhoon feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("typhoon feed error: status %d: %s", resp.StatusCode, body)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	storms := make([]domain.TyphoonInfo, 0, len(feed.Storms))
	for _, s := range feed.Storms {
		storms = append(storms, domain.TyphoonInfo{
			ID:   s.ID,
			Name: s.Name,
			// Classify from wind rather than trusting the feed label.
			Category: domain.ClassifyTyphoonCategory(s.MaxWindKt),
			Current: domain.TyphoonPosition{
				Lat:                s.Lat,
				Lon:                s.Lon,
				MaxWindKt:          s.MaxWindKt,
				CentralPressureHPa: s.CentralPressureHPa,
				MovementDir:        s.MovementDir,
				MovementSpeedKt:    s.MovementSpeedKt,
			},
			Source: feed.Source,
		})
	}
	return storms, nil
}

// Feed wire types.

type feedResponse struct {
	Source string      `json:"source"`
	Storms []feedStorm `json:"storms"`
}

type feedStorm struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	MaxWindKt          float64 `json:"max_wind_kt"`
	CentralPressureHPa float64 `json:"central_pressure_hpa"`
	MovementDir        float64 `json:"movement_dir"`
	MovementSpeedKt    float64 `json:"movement_speed_kt"`
}
