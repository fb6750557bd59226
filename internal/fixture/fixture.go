// Package fixture builds a deterministic synthetic satellite scene for the
// genmock and validate tools: a step thermal front, a Gaussian sea-level
// bump, and a calm forecast, backed by in-memory sources so the real
// prediction pipeline runs without network access.
package fixture

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
)

// BaseTime is the observation timestamp stamped on every synthetic sample.
var BaseTime = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

const (
	latMin = 20.0
	latMax = 22.0
	lonMin = 120.0
	lonMax = 122.0

	gridN = 41   // samples per axis, 0.05 degree spacing
	step  = 0.05 // degrees

	frontLat = 21.0 // step front boundary: warm south, cool north

	warmSST = 27.0
	coolSST = 22.0
)

// Box returns the scene's bounding box.
func Box() domain.BoundingBox {
	box, err := domain.NewBoundingBox(latMin, latMax, lonMin, lonMax)
	if err != nil {
		panic(fmt.Sprintf("fixture box: %v", err))
	}
	return box
}

// SSTSamples returns a temperature field with a sharp east-west front at
// 21°N: 27°C south of it, 22°C north.
func SSTSamples() []domain.Sample {
	return field(func(lat, lon float64) float64 {
		if lat < frontLat {
			return warmSST
		}
		return coolSST
	})
}

// ChlaSamples returns a chlorophyll field rising gently toward the north,
// everywhere inside the productive 0.2-1.0 mg/m³ band.
func ChlaSamples() []domain.Sample {
	return field(func(lat, lon float64) float64 {
		return 0.3 + 0.3*(latMax-lat)/(latMax-latMin)
	})
}

// SSHSamples returns a sea-surface-height field with one warm-core Gaussian
// bump centered mid-scene, sized to detect as a mesoscale eddy.
func SSHSamples() []domain.Sample {
	return field(func(lat, lon float64) float64 {
		r := (lat - latMin) / step
		c := (lon - lonMin) / step
		d2 := (r-20)*(r-20) + (c-20)*(c-20)
		return 0.3 * math.Exp(-d2/72)
	})
}

func field(value func(lat, lon float64) float64) []domain.Sample {
	samples := make([]domain.Sample, 0, gridN*gridN)
	for r := 0; r < gridN; r++ {
		for c := 0; c < gridN; c++ {
			lat := latMin + float64(r)*step
			lon := lonMin + float64(c)*step
			samples = append(samples, domain.Sample{
				Lat: lat, Lon: lon,
				Value: value(lat, lon),
				Time:  BaseTime,
			})
		}
	}
	return samples
}

// Points returns the lattice of assessment points: two rows straddling the
// front plus rows spread across the rest of the scene.
func Points() []domain.GeoPoint {
	lats := []float64{20.1, 20.4, 20.7, 20.95, 21.05, 21.3, 21.6}
	lons := []float64{120.3, 120.8, 121.2, 121.7}

	points := make([]domain.GeoPoint, 0, len(lats)*len(lons))
	for _, lat := range lats {
		for _, lon := range lons {
			points = append(points, domain.GeoPoint{Lat: lat, Lon: lon})
		}
	}
	return points
}

// Sources wires sample slices into in-memory prediction sources with calm
// fixed weather.
func Sources(sst, chla, ssh []domain.Sample) predictor.Sources {
	return predictor.Sources{
		SSTPoint: pointSource{samples: sst},
		SSTArea:  sampleSource{samples: sst},
		ChlaArea: sampleSource{samples: chla},
		SSHArea:  sampleSource{samples: ssh},
		Weather:  calmWeather{},
	}
}

// CatchForScore maps a PFZ score to a synthetic catch weight whose class
// under the default thresholds matches the score's class: scores of 70+
// land at 100 kg or more, 50-70 in the 30-100 kg band, and lower scores
// under 30 kg.
func CatchForScore(score float64) float64 {
	switch {
	case score >= 70:
		return 100 + (score-70)*2
	case score >= 50:
		return 30 + (score-50)*3
	default:
		return 5 + score*0.45
	}
}

// CPUEForCatch converts catch weight to catch-per-unit-effort assuming a
// fixed 40-hour soak.
func CPUEForCatch(catchKg float64) float64 {
	return catchKg / 40
}

type sampleSource struct {
	samples []domain.Sample
}

func (s sampleSource) FetchSamples(_ context.Context, box domain.BoundingBox) ([]domain.Sample, error) {
	var out []domain.Sample
	for _, smp := range s.samples {
		if box.Contains(smp.Lat, smp.Lon) {
			out = append(out, smp)
		}
	}
	return out, nil
}

type pointSource struct {
	samples []domain.Sample
}

func (s pointSource) FetchPoint(_ context.Context, lat, lon float64) (float64, error) {
	if len(s.samples) == 0 {
		return 0, fmt.Errorf("no observations near %.4f, %.4f", lat, lon)
	}
	best := s.samples[0]
	bestDist := math.Inf(1)
	for _, smp := range s.samples {
		if d := domain.Haversine(lat, lon, smp.Lat, smp.Lon); d < bestDist {
			bestDist = d
			best = smp
		}
	}
	return best.Value, nil
}

type calmWeather struct{}

func (calmWeather) FetchForecast(_ context.Context, _, _ float64, _ int) (domain.WeatherInputs, error) {
	wave := 1.2
	vis := 20000.0
	precip := 0.5
	return domain.WeatherInputs{
		WindSpeed:     5,
		WaveHeight:    &wave,
		Visibility:    &vis,
		Precipitation: &precip,
	}, nil
}
