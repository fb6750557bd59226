package erddap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(field Field, baseURL string) *Client {
	return &Client{
		field:      field,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		lookback:   defaultLookback,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
}

func testBox() domain.BoundingBox {
	return domain.BoundingBox{LatMin: 20, LatMax: 21, LonMin: 120, LonMax: 121}
}

func TestClient_FetchSamples_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "griddap/jplMURSST41.json")
		assert.Contains(t, r.URL.RawQuery, "analysed_sst")
		assert.Contains(t, r.URL.RawQuery, "(20):1:(21)")

		w.Header().Set(headerContentType, contentTypeJSON)
		fmt.Fprint(w, `{"table":{
			"columnNames":["time","latitude","longitude","analysed_sst"],
			"rows":[
				["2026-08-30T12:00:00Z",20.0,120.0,26.5],
				["2026-08-30T12:00:00Z",20.5,120.5,27.1],
				["2026-08-30T12:00:00Z",21.0,121.0,null]
			]}}`)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)
	samples, err := c.FetchSamples(context.Background(), testBox())
	require.NoError(t, err)

	require.Len(t, samples, 2, "null cells are dropped")
	assert.Equal(t, domain.Sample{Lat: 20.0, Lon: 120.0, Value: 26.5}, samples[0])
	assert.Equal(t, domain.Sample{Lat: 20.5, Lon: 120.5, Value: 27.1}, samples[1])
}

func TestClient_FetchSamples_KelvinConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		fmt.Fprint(w, `{"table":{
			"columnNames":["time","latitude","longitude","analysed_sst"],
			"rows":[
				["2026-08-30T12:00:00Z",20.0,120.0,299.65],
				["2026-08-30T12:00:00Z",20.5,120.5,300.15]
			]}}`)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)
	samples, err := c.FetchSamples(context.Background(), testBox())
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.InDelta(t, 26.5, samples[0].Value, 1e-9)
	assert.InDelta(t, 27.0, samples[1].Value, 1e-9)
}

func TestClient_FetchSamples_KelvinConversionOnlyForSST(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		fmt.Fprint(w, `{"table":{
			"columnNames":["time","latitude","longitude","sea_surface_height"],
			"rows":[
				["2026-08-30T12:00:00Z",20.0,120.0,220.0],
				["2026-08-30T12:00:00Z",20.5,120.5,240.0]
			]}}`)
	}))
	defer srv.Close()

	c := testClient(SSH, srv.URL)
	samples, err := c.FetchSamples(context.Background(), testBox())
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, 220.0, samples[0].Value, "non-SST fields pass through unconverted")
	assert.Equal(t, 240.0, samples[1].Value)
}

func TestClient_FetchSamples_EmptyWindow(t *testing.T) {
	t.Run("404 means no data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := testClient(Chla, srv.URL)
		samples, err := c.FetchSamples(context.Background(), testBox())
		require.NoError(t, err)
		assert.Empty(t, samples)
	})

	t.Run("empty table", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(headerContentType, contentTypeJSON)
			fmt.Fprint(w, `{"table":{"columnNames":[],"rows":[]}}`)
		}))
		defer srv.Close()

		c := testClient(Chla, srv.URL)
		samples, err := c.FetchSamples(context.Background(), testBox())
		require.NoError(t, err)
		assert.Empty(t, samples)
	})
}

func TestClient_FetchSamples_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("griddap blew up"))
	}))
	defer srv.Close()

	c := testClient(SSH, srv.URL)
	_, err := c.FetchSamples(context.Background(), testBox())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_FetchSamples_MissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		fmt.Fprint(w, `{"table":{
			"columnNames":["time","latitude","longitude","wrong_var"],
			"rows":[["2026-08-30T12:00:00Z",20.0,120.0,1.0]]}}`)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)
	_, err := c.FetchSamples(context.Background(), testBox())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysed_sst")
}

func TestClient_FetchSamples_InvalidBox(t *testing.T) {
	c := testClient(SST, "http://unused")
	_, err := c.FetchSamples(context.Background(), domain.BoundingBox{LatMin: 5, LatMax: 1})
	assert.Error(t, err)
}

func TestClient_FetchSamples_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.FetchSamples(context.Background(), testBox())
	require.Error(t, err)
}

func TestClient_FetchPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		fmt.Fprint(w, `{"table":{
			"columnNames":["time","latitude","longitude","analysed_sst"],
			"rows":[
				["2026-08-30T12:00:00Z",22.40,121.00,25.0],
				["2026-08-30T12:00:00Z",22.51,121.01,26.8],
				["2026-08-30T12:00:00Z",22.60,121.10,28.0]
			]}}`)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)

	t.Run("returns the nearest observation", func(t *testing.T) {
		value, err := c.FetchPoint(context.Background(), 22.5, 121.0)
		require.NoError(t, err)
		assert.Equal(t, 26.8, value)
	})
}

func TestClient_FetchPoint_NoObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(SST, srv.URL)
	_, err := c.FetchPoint(context.Background(), 22.5, 121.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}
