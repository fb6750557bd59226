package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	calc := NewMetricsCalculator()

	t.Run("no data yields zeroed metrics", func(t *testing.T) {
		m := calc.Calculate(nil, nil)
		assert.Equal(t, 0, m.SampleSize)
		assert.Equal(t, 0.0, m.HitRate)
		assert.Contains(t, m.ConfusionMatrix, "high")
		assert.Contains(t, m.ConfusionMatrix, "low")
	})

	t.Run("mismatched lengths truncate to the shorter list", func(t *testing.T) {
		predictions := []PredictionRecord{{PFZScore: 80}, {PFZScore: 60}, {PFZScore: 40}}
		actuals := []CatchRecord{{CatchKg: 150}, {CatchKg: 50}}
		m := calc.Calculate(predictions, actuals)
		assert.Equal(t, 2, m.SampleSize)
	})

	t.Run("known outcome mix", func(t *testing.T) {
		predictions := []PredictionRecord{
			{Lat: 22, Lon: 121, PFZScore: 80}, // high, catch high
			{Lat: 23, Lon: 122, PFZScore: 80}, // high, catch low
			{Lat: 24, Lon: 123, PFZScore: 40}, // low, catch low
		}
		actuals := []CatchRecord{
			{Lat: 22, Lon: 121, CatchKg: 150, CPUE: 16},
			{Lat: 23, Lon: 122, CatchKg: 20, CPUE: 16},
			{Lat: 24, Lon: 123, CatchKg: 10, CPUE: 8},
		}
		m := calc.Calculate(predictions, actuals)

		assert.Equal(t, 3, m.SampleSize)
		assert.Equal(t, 0.5, m.HitRate, "one of two high predictions paid off")
		assert.InDelta(t, 2.0/3.0, m.ClassificationAccuracy, 1e-9)
		assert.Equal(t, 0.5, m.Precision)
		assert.Equal(t, 1.0, m.Recall)
		assert.InDelta(t, 2.0/3.0, m.F1Score, 1e-9)
		assert.Equal(t, 1, m.ConfusionMatrix["high"]["high"])
		assert.Equal(t, 1, m.ConfusionMatrix["high"]["low"])
		assert.Equal(t, 1, m.ConfusionMatrix["low"]["low"])
		// CPUE 16,16,8 tracks scores 80,80,40 perfectly.
		assert.InDelta(t, 1.0, m.CPUECorrelation, 1e-9)
		assert.Equal(t, 0.0, m.SpatialErrorKm, "records are co-located")
	})

	t.Run("spatial error averages prediction to catch distance", func(t *testing.T) {
		predictions := []PredictionRecord{
			{Lat: 20, Lon: 120, PFZScore: 80},
			{Lat: 21, Lon: 120, PFZScore: 60},
		}
		actuals := []CatchRecord{
			{Lat: 21, Lon: 120, CatchKg: 100, CPUE: 10},
			{Lat: 21, Lon: 120, CatchKg: 50, CPUE: 5},
		}
		m := calc.Calculate(predictions, actuals)
		// One pair a degree apart, one co-located.
		assert.InDelta(t, 55.6, m.SpatialErrorKm, 0.1)
	})

	t.Run("degenerate series has no correlation", func(t *testing.T) {
		predictions := []PredictionRecord{{PFZScore: 50}, {PFZScore: 50}, {PFZScore: 50}}
		actuals := []CatchRecord{{CPUE: 1}, {CPUE: 2}, {CPUE: 3}}
		m := calc.Calculate(predictions, actuals)
		assert.Equal(t, 0.0, m.CPUECorrelation)
	})

	t.Run("fewer than three pairs has no correlation", func(t *testing.T) {
		predictions := []PredictionRecord{{PFZScore: 80}, {PFZScore: 40}}
		actuals := []CatchRecord{{CPUE: 10}, {CPUE: 5}}
		m := calc.Calculate(predictions, actuals)
		assert.Equal(t, 0.0, m.CPUECorrelation)
	})

	t.Run("no high predictions zeroes the hit rate", func(t *testing.T) {
		predictions := []PredictionRecord{{PFZScore: 40}, {PFZScore: 30}, {PFZScore: 20}}
		actuals := []CatchRecord{{CatchKg: 150}, {CatchKg: 10}, {CatchKg: 5}}
		m := calc.Calculate(predictions, actuals)
		assert.Equal(t, 0.0, m.HitRate)
		assert.Equal(t, 0.0, m.Precision)
		assert.Equal(t, 0.0, m.Recall)
	})
}

func TestClassThresholds(t *testing.T) {
	assert.Equal(t, "high", DefaultPFZThresholds.classify(70))
	assert.Equal(t, "medium", DefaultPFZThresholds.classify(69.9))
	assert.Equal(t, "medium", DefaultPFZThresholds.classify(50))
	assert.Equal(t, "low", DefaultPFZThresholds.classify(49.9))

	assert.Equal(t, "high", DefaultCatchThresholds.classify(100))
	assert.Equal(t, "low", DefaultCatchThresholds.classify(29))
}

func TestAccuracyMetrics_Summary(t *testing.T) {
	calc := NewMetricsCalculator()
	predictions := []PredictionRecord{{PFZScore: 80}, {PFZScore: 60}, {PFZScore: 40}}
	actuals := []CatchRecord{
		{CatchKg: 150, CPUE: 15},
		{CatchKg: 50, CPUE: 8},
		{CatchKg: 10, CPUE: 2},
	}
	summary := calc.Calculate(predictions, actuals).Summary()

	require.NotEmpty(t, summary)
	assert.Contains(t, summary, "PFZ accuracy report")
	assert.Contains(t, summary, "samples: 3")
	assert.Contains(t, summary, "hit rate")
	assert.Contains(t, summary, "CPUE correlation")
}
