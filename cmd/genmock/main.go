// Command genmock generates deterministic PFZ fixture data: a synthetic
// satellite scene (step thermal front, Gaussian sea-level bump, gentle
// chlorophyll gradient), the predictions the engine computes from it, and a
// catch log whose outcomes track the prediction classes. It runs the actual
// prediction pipeline so fixture scores match real engine behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/fixtures
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/fixture"
	"github.com/couchcryptid/pfz-engine/internal/observability"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
	"github.com/jonboulle/clockwork"
)

const forecastDays = 3

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture JSON files")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fix the clock so detection timestamps are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(fixture.BaseTime))
	defer domain.SetClock(nil)

	sst := fixture.SSTSamples()
	chla := fixture.ChlaSamples()
	ssh := fixture.SSHSamples()

	calc := predictor.New(
		fixture.Sources(sst, chla, ssh),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
		predictor.WithClock(func() time.Time { return fixture.BaseTime }),
	)

	ctx := context.Background()
	points := fixture.Points()
	predictions := make([]domain.PredictionRecord, 0, len(points))
	catches := make([]domain.CatchRecord, 0, len(points))

	for _, p := range points {
		pred, err := calc.Predict(ctx, p.Lat, p.Lon, forecastDays)
		if err != nil {
			return fmt.Errorf("predicting %.2f, %.2f: %w", p.Lat, p.Lon, err)
		}
		predictions = append(predictions, domain.PredictionRecord{
			Lat: p.Lat, Lon: p.Lon, PFZScore: pred.Scores.Total,
		})
		catchKg := fixture.CatchForScore(pred.Scores.Total)
		catches = append(catches, domain.CatchRecord{
			Lat: p.Lat, Lon: p.Lon,
			CatchKg: catchKg,
			CPUE:    fixture.CPUEForCatch(catchKg),
		})
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{"sst_samples.json", sst},
		{"chla_samples.json", chla},
		{"ssh_samples.json", ssh},
		{"predictions.json", predictions},
		{"catch_log.json", catches},
	}
	for _, f := range files {
		path := filepath.Join(*out, f.name)
		if err := writeJSON(path, f.data); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(sst, ssh, predictions)
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(sst, ssh []domain.Sample, predictions []domain.PredictionRecord) {
	fronts := domain.NewFrontDetector().DetectFromSamples(sst)
	eddies := domain.NewEddyDetector().DetectFromSamples(ssh)
	log.Printf("scene: %d fronts (%.0f km total), %d eddies",
		len(fronts.Fronts), fronts.TotalLengthKm(), len(eddies.Eddies))

	classes := map[string]int{}
	for _, p := range predictions {
		switch {
		case p.PFZScore >= domain.DefaultPFZThresholds.High:
			classes["high"]++
		case p.PFZScore >= domain.DefaultPFZThresholds.Medium:
			classes["medium"]++
		default:
			classes["low"]++
		}
	}
	log.Printf("predictions: %d total (%d high, %d medium, %d low)",
		len(predictions), classes["high"], classes["medium"], classes["low"])
}
