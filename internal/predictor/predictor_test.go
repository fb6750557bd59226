package predictor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

var errUpstream = errors.New("upstream unavailable")

type fakePoint struct {
	value float64
	err   error
}

func (f fakePoint) FetchPoint(context.Context, float64, float64) (float64, error) {
	return f.value, f.err
}

type fakeSamples struct {
	samples []domain.Sample
	err     error
}

func (f fakeSamples) FetchSamples(context.Context, domain.BoundingBox) ([]domain.Sample, error) {
	return f.samples, f.err
}

type fakeWeather struct {
	inputs domain.WeatherInputs
	err    error
}

func (f fakeWeather) FetchForecast(context.Context, float64, float64, int) (domain.WeatherInputs, error) {
	return f.inputs, f.err
}

type fakeTyphoons struct {
	storms []domain.TyphoonInfo
	err    error
}

func (f fakeTyphoons) ActiveTyphoons(context.Context) ([]domain.TyphoonInfo, error) {
	return f.storms, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func failingSources() Sources {
	return Sources{
		SSTPoint: fakePoint{err: errUpstream},
		SSTArea:  fakeSamples{err: errUpstream},
		ChlaArea: fakeSamples{err: errUpstream},
		SSHArea:  fakeSamples{err: errUpstream},
		Weather:  fakeWeather{err: errUpstream},
	}
}

// chlaSamples returns a uniform chlorophyll field of the given value.
func chlaSamples(value float64) []domain.Sample {
	return []domain.Sample{
		{Lat: 20, Lon: 120, Value: value},
		{Lat: 21, Lon: 121, Value: value},
	}
}

func TestWeights_Normalized(t *testing.T) {
	t.Run("scales to unit sum", func(t *testing.T) {
		n := Weights{Habitat: 0.2, Front: 0.2}.normalized()
		assert.Equal(t, 0.5, n.Habitat)
		assert.Equal(t, 0.5, n.Front)
		assert.Equal(t, 0.0, n.Eddy)
	})

	t.Run("zero weights fall back to defaults", func(t *testing.T) {
		assert.Equal(t, DefaultWeights(), Weights{}.normalized())
	})

	t.Run("defaults already sum to one", func(t *testing.T) {
		assert.InDelta(t, 1.0, DefaultWeights().sum(), 1e-9)
	})
}

func TestCalculator_Predict_AllStagesDegraded(t *testing.T) {
	calc := New(failingSources(), testLogger(), observability.NewMetricsForTesting())

	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err, "stage failures degrade, never abort")

	// habitat 50*0.30 + front 0 + eddy 0 + weather 70*0.15 + trend 60*0.10
	assert.Equal(t, 31.5, pred.Scores.Total)
	assert.Equal(t, 50.0, pred.Scores.Habitat)
	assert.Equal(t, 0.0, pred.Scores.Front)
	assert.Equal(t, 0.0, pred.Scores.Eddy)
	assert.Equal(t, 70.0, pred.Scores.Weather)
	assert.Equal(t, 60.0, pred.Scores.Trend)
	// (0.3 + 0.3 + 0.3 + 0.4 + 0.6) / 5
	assert.Equal(t, 0.38, pred.Confidence)
	assert.Equal(t, "poor", pred.Scores.Level())
	assert.Contains(t, pred.Recommendation, "hold off")
}

func TestCalculator_Predict_NilSourcesBehaveLikeFailures(t *testing.T) {
	calc := New(Sources{}, testLogger(), nil)

	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)
	assert.Equal(t, 31.5, pred.Scores.Total)
	assert.Equal(t, 0.38, pred.Confidence)
}

func TestCalculator_Predict_HabitatAndWeather(t *testing.T) {
	src := failingSources()
	src.SSTPoint = fakePoint{value: 26}
	src.ChlaArea = fakeSamples{samples: chlaSamples(0.5)}
	src.Weather = fakeWeather{inputs: domain.WeatherInputs{WindSpeed: 5}}

	calc := New(src, testLogger(), observability.NewMetricsForTesting())
	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)

	assert.Equal(t, 100.0, pred.Scores.Habitat, "optimal temperature and chlorophyll")
	assert.Equal(t, 90.0, pred.Scores.Weather)
	assert.Equal(t, "excellent", pred.Operability)
	// 100*0.30 + 90*0.15 + 60*0.10
	assert.Equal(t, 49.5, pred.Scores.Total)
	// (0.9 + 0.3 + 0.3 + 0.9 + 0.6) / 5
	assert.Equal(t, 0.6, pred.Confidence)
	require.NotNil(t, pred.SST)
	assert.Equal(t, 26.0, *pred.SST)
	require.NotNil(t, pred.Chla)
	assert.Equal(t, 0.5, *pred.Chla)
}

func TestCalculator_Predict_TargetSpecies(t *testing.T) {
	src := failingSources()
	src.SSTPoint = fakePoint{value: 21}
	src.ChlaArea = fakeSamples{samples: chlaSamples(0.3)}

	calc := New(src, testLogger(), nil, WithSpecies("bluefin_tuna"))
	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)

	assert.Equal(t, "bluefin_tuna", pred.TargetSpecies)
	assert.Equal(t, 100.0, pred.Scores.Habitat)
}

func TestCalculator_Predict_UnknownSpeciesIgnored(t *testing.T) {
	calc := New(Sources{}, testLogger(), nil, WithSpecies("kraken"))
	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)
	assert.Empty(t, pred.TargetSpecies)
}

func TestCalculator_Predict_FrontAndEddyDetection(t *testing.T) {
	// A step SST field puts a thermal front through the prediction point,
	// and a broad SSH bump to the northeast adds eddy activity.
	var sst, ssh []domain.Sample
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			value := 20.0
			if c > 2 {
				value = 25.0
			}
			sst = append(sst, domain.Sample{
				Lat: 20 + float64(r)*0.2, Lon: 120 + float64(c)*0.2, Value: value,
			})
		}
	}
	for r := 0; r < 41; r++ {
		for c := 0; c < 41; c++ {
			d2 := (float64(r)-20)*(float64(r)-20) + (float64(c)-20)*(float64(c)-20)
			ssh = append(ssh, domain.Sample{
				Lat: 20 + float64(r)*0.05, Lon: 120 + float64(c)*0.05,
				Value: 0.3 * math.Exp(-d2/72),
			})
		}
	}

	src := failingSources()
	src.SSTArea = fakeSamples{samples: sst}
	src.SSHArea = fakeSamples{samples: ssh}

	calc := New(src, testLogger(), observability.NewMetricsForTesting())
	pred, err := calc.Predict(context.Background(), 20.4, 120.4, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, pred.FrontCount)
	assert.Equal(t, 100.0, pred.Scores.Front, "point sits on the front")
	assert.Equal(t, 1, pred.EddyCount)
	assert.Greater(t, pred.Scores.Eddy, 0.0)
	assert.Contains(t, pred.Recommendation, "thermal front nearby")
}

func TestCalculator_Predict_TyphoonPenalty(t *testing.T) {
	src := failingSources()
	src.Weather = fakeWeather{inputs: domain.WeatherInputs{WindSpeed: 5}}

	storm := domain.TyphoonInfo{
		ID: "2609", Name: "NOCK-TEN", Category: domain.SevereTyphoon,
		Current: domain.TyphoonPosition{Lat: 23, Lon: 121, MaxWindKt: 90},
	}

	t.Run("extreme risk zeroes the weather score", func(t *testing.T) {
		calc := New(src, testLogger(), nil, WithTyphoonSource(fakeTyphoons{storms: []domain.TyphoonInfo{storm}}))
		pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
		require.NoError(t, err)

		assert.Equal(t, 0.0, pred.Scores.Weather)
		assert.Equal(t, domain.RiskExtreme, pred.TyphoonRisk)
		assert.Contains(t, pred.Recommendation, "typhoon risk: extreme")
	})

	t.Run("feed failure leaves the score untouched", func(t *testing.T) {
		calc := New(src, testLogger(), nil, WithTyphoonSource(fakeTyphoons{err: errUpstream}))
		pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
		require.NoError(t, err)
		assert.Equal(t, 90.0, pred.Scores.Weather)
		assert.Empty(t, pred.TyphoonRisk)
	})

	t.Run("distant storms have no effect", func(t *testing.T) {
		calc := New(src, testLogger(), nil, WithTyphoonSource(fakeTyphoons{storms: []domain.TyphoonInfo{{
			Current: domain.TyphoonPosition{Lat: 45, Lon: 160, MaxWindKt: 90},
		}}}))
		pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
		require.NoError(t, err)
		assert.Equal(t, 90.0, pred.Scores.Weather)
	})
}

func TestCalculator_Predict_WeightRenormalization(t *testing.T) {
	calc := New(failingSources(), testLogger(), nil, WithWeights(Weights{Habitat: 1, Front: 1}))

	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)
	// habitat 50 at weight 0.5, front 0 at weight 0.5
	assert.Equal(t, 25.0, pred.Scores.Total)
}

func TestCalculator_Predict_InvalidCoordinates(t *testing.T) {
	calc := New(Sources{}, testLogger(), nil)
	_, err := calc.Predict(context.Background(), 95, 0, 3)
	assert.Error(t, err)
}

func TestCalculator_Predict_Timestamp(t *testing.T) {
	fixed := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	calc := New(Sources{}, testLogger(), nil, WithClock(func() time.Time { return fixed }))

	pred, err := calc.Predict(context.Background(), 22.5, 121.0, 3)
	require.NoError(t, err)
	assert.Equal(t, fixed, pred.Time)
}

func TestCalculator_PredictGrid(t *testing.T) {
	calc := New(failingSources(), testLogger(), observability.NewMetricsForTesting())
	box := domain.BoundingBox{LatMin: 20, LatMax: 21, LonMin: 120, LonMax: 121}

	t.Run("covers the lattice inclusively", func(t *testing.T) {
		cells, err := calc.PredictGrid(context.Background(), box, 0.5, 3)
		require.NoError(t, err)
		require.Len(t, cells, 9)
		assert.Equal(t, 20.0, cells[0].Lat)
		assert.Equal(t, 120.0, cells[0].Lon)
		assert.Equal(t, 21.0, cells[8].Lat)
		assert.Equal(t, 121.0, cells[8].Lon)
		for _, cell := range cells {
			assert.Equal(t, 31.5, cell.PFZScore)
			assert.Equal(t, "poor", cell.Level)
		}
	})

	t.Run("invalid resolution rejected", func(t *testing.T) {
		_, err := calc.PredictGrid(context.Background(), box, 0, 3)
		assert.Error(t, err)
	})

	t.Run("invalid box rejected", func(t *testing.T) {
		bad := domain.BoundingBox{LatMin: 5, LatMax: 1}
		_, err := calc.PredictGrid(context.Background(), bad, 0.5, 3)
		assert.Error(t, err)
	})

	t.Run("cancelled context aborts the sweep", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := calc.PredictGrid(ctx, box, 0.5, 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
