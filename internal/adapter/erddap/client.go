// Package erddap fetches gridded satellite observations from an
// ERDDAP-style griddap JSON endpoint.
package erddap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

// pointWindowDeg is the half-width of the box used to resolve a single
// point value from the gridded field.
const pointWindowDeg = 0.1

// defaultLookback is the observation window queried when fetching. Most
// level-4 satellite products lag real time by a day or two.
const defaultLookback = 3 * 24 * time.Hour

// Field identifies one griddap dataset/variable pair.
type Field struct {
	Name     string // metrics label
	Dataset  string // ERDDAP dataset id
	Variable string // gridded variable name
}

// Standard fields served by NOAA CoastWatch.
var (
	SST  = Field{Name: "sst", Dataset: "jplMURSST41", Variable: "analysed_sst"}
	Chla = Field{Name: "chla", Dataset: "erdMH1chla8day", Variable: "chlorophyll"}
	SSH  = Field{Name: "ssh", Dataset: "nesdisSSH1day", Variable: "sea_surface_height"}
)

// Client fetches one satellite field. It implements the predictor's
// sample and point source interfaces.
type Client struct {
	field      Field
	httpClient *http.Client
	baseURL    string
	lookback   time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a griddap client for one field.
func NewClient(field Field, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		field: field,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		lookback: defaultLookback,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchSamples fetches all finite observations of the field inside the box
// over the lookback window.
func (c *Client) FetchSamples(ctx context.Context, box domain.BoundingBox) ([]domain.Sample, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}

	end := c.now().UTC()
	start := end.Add(-c.lookback)
	projection := fmt.Sprintf("%s[(%s):1:(%s)][(%g):1:(%g)][(%g):1:(%g)]",
		c.field.Variable,
		start.Format(time.RFC3339), end.Format(time.RFC3339),
		box.LatMin, box.LatMax,
		box.LonMin, box.LonMax,
	)
	fullURL := fmt.Sprintf("%s/griddap/%s.json?%s", c.baseURL, c.field.Dataset, projection)

	return c.doRequest(ctx, fullURL)
}

// FetchPoint resolves the field at a point: the finite sample nearest to
// (lat, lon) within a small surrounding window.
func (c *Client) FetchPoint(ctx context.Context, lat, lon float64) (float64, error) {
	samples, err := c.FetchSamples(ctx, domain.PointBox(lat, lon, pointWindowDeg))
	if err != nil {
		return 0, err
	}
	return nearestValue(lat, lon, samples)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.Sample, error) {
	started := time.Now()
	samples, err := c.fetch(ctx, fullURL)
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.FetchRequests.WithLabelValues(c.field.Name, outcome).Inc()
		c.metrics.FetchDuration.WithLabelValues(c.field.Name).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("satellite fetch",
		"field", c.field.Name,
		"samples", len(samples),
		"elapsed", time.Since(started),
	)
	return samples, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]domain.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", c.field.Name, err)
	}
	defer resp.Body.Close()

	// ERDDAP answers 404 when the window holds no data; treat as empty.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("erddap error: status %d: %s", resp.StatusCode, body)
	}

	var griddap response
	if err := json.NewDecoder(resp.Body).Decode(&griddap); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parseTable(griddap.Table, c.field)
}

// parseTable flattens a griddap table into samples, dropping rows with
// missing values. SST products report Kelvin; for that field only, a mean
// above 200 triggers conversion to Celsius.
func parseTable(t table, field Field) ([]domain.Sample, error) {
	latIdx, lonIdx, valIdx := -1, -1, -1
	for i, name := range t.ColumnNames {
		switch name {
		case "latitude":
			latIdx = i
		case "longitude":
			lonIdx = i
		case field.Variable:
			valIdx = i
		}
	}
	if latIdx < 0 || lonIdx < 0 || valIdx < 0 {
		if len(t.Rows) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("griddap table missing columns for %s", field.Variable)
	}

	var samples []domain.Sample
	var sum float64
	for _, row := range t.Rows {
		lat, okLat := numericCell(row, latIdx)
		lon, okLon := numericCell(row, lonIdx)
		value, okVal := numericCell(row, valIdx)
		if !okLat || !okLon || !okVal || math.IsNaN(value) {
			continue
		}
		samples = append(samples, domain.Sample{Lat: lat, Lon: lon, Value: value})
		sum += value
	}

	if field.Name == SST.Name && len(samples) > 0 && sum/float64(len(samples)) > 200 {
		for i := range samples {
			samples[i].Value -= 273.15
		}
	}
	return samples, nil
}

func numericCell(row []any, idx int) (float64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	v, ok := row[idx].(float64)
	return v, ok
}

// nearestValue returns the sample value closest to (lat, lon).
func nearestValue(lat, lon float64, samples []domain.Sample) (float64, error) {
	best := math.Inf(1)
	var value float64
	found := false
	for _, s := range samples {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		if dist := domain.Haversine(lat, lon, s.Lat, s.Lon); dist < best {
			best = dist
			value = s.Value
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("no observations near %.4f, %.4f", lat, lon)
	}
	return value, nil
}

// Griddap JSON response types.

type response struct {
	Table table `json:"table"`
}

type table struct {
	ColumnNames []string `json:"columnNames"`
	Rows        [][]any  `json:"rows"`
}
