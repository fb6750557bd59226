// Command validate performs end-to-end integrity checks on the generated
// PFZ fixtures: satellite sample fields, the predictions derived from them,
// and the catch log. It verifies field plausibility, re-runs front and eddy
// detection on the stored scene, reproduces every prediction score through
// the real pipeline, and scores predictions against the catch log.
//
// Usage:
//
//	go run ./cmd/validate -fixture-dir data/fixtures
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
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

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixtureDir := flag.String("fixture-dir", "", "directory containing fixture JSON files")
	flag.Parse()

	if *fixtureDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixtureDir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	// Fix the clock matching genmock for reproducible detection output.
	domain.SetClock(clockwork.NewFakeClockAt(fixture.BaseTime))
	defer domain.SetClock(nil)

	fmt.Println("=== PFZ Fixture Validation ===")
	fmt.Println()

	sst, err := loadJSON[domain.Sample](filepath.Join(dir, "sst_samples.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load SST samples: %v\n", err)
		return 1
	}
	chla, err := loadJSON[domain.Sample](filepath.Join(dir, "chla_samples.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load chlorophyll samples: %v\n", err)
		return 1
	}
	ssh, err := loadJSON[domain.Sample](filepath.Join(dir, "ssh_samples.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load SSH samples: %v\n", err)
		return 1
	}
	predictions, err := loadJSON[domain.PredictionRecord](filepath.Join(dir, "predictions.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load predictions: %v\n", err)
		return 1
	}
	catches, err := loadJSON[domain.CatchRecord](filepath.Join(dir, "catch_log.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catch log: %v\n", err)
		return 1
	}

	metrics := domain.NewMetricsCalculator().Calculate(predictions, catches)

	phases := []*phase{
		validateFields(sst, chla, ssh),
		validateDetections(sst, ssh),
		validateReproducibility(sst, chla, ssh, predictions),
		validateAccuracy(metrics, predictions, catches),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d SST, %d chlorophyll, %d SSH samples, %d predictions, %d catches\n",
		len(sst), len(chla), len(ssh), len(predictions), len(catches))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	fmt.Println()
	fmt.Println(metrics.Summary())

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Validation phases ──

func validateFields(sst, chla, ssh []domain.Sample) *phase {
	p := &phase{name: "satellite field integrity"}
	box := fixture.Box()

	checkField(p, "SST", sst, box, -2, 35)
	checkField(p, "chlorophyll", chla, box, 0.01, 30)
	checkField(p, "SSH", ssh, box, -2, 2)

	if len(sst) != len(ssh) || len(sst) != len(chla) {
		p.errorf("field sizes differ: %d SST, %d chlorophyll, %d SSH",
			len(sst), len(chla), len(ssh))
	}
	return p
}

func checkField(p *phase, name string, samples []domain.Sample, box domain.BoundingBox, lo, hi float64) {
	if len(samples) == 0 {
		p.errorf("%s: no samples", name)
		return
	}
	for i, s := range samples {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			p.errorf("%s[%d]: non-finite value", name, i)
			return
		}
		if s.Value < lo || s.Value > hi {
			p.errorf("%s[%d]: value %.3f outside plausible range [%.1f, %.1f]",
				name, i, s.Value, lo, hi)
			return
		}
		if !box.Contains(s.Lat, s.Lon) {
			p.errorf("%s[%d]: coordinates %.3f, %.3f outside scene box",
				name, i, s.Lat, s.Lon)
			return
		}
	}
}

func validateDetections(sst, ssh []domain.Sample) *phase {
	p := &phase{name: "front and eddy detection"}

	fd := domain.NewFrontDetector()
	fronts := fd.DetectFromSamples(sst)
	if len(fronts.Fronts) == 0 {
		p.errorf("no thermal fronts detected in SST scene")
	}
	for i, f := range fronts.Fronts {
		if f.GradientMax < fd.GradientThreshold {
			p.errorf("front %d: max gradient %.3f below threshold %.3f",
				i, f.GradientMax, fd.GradientThreshold)
		}
		if f.LengthKm < fd.MinLengthKm {
			p.errorf("front %d: length %.1f km below minimum %.1f km",
				i, f.LengthKm, fd.MinLengthKm)
		}
	}

	ed := domain.NewEddyDetector()
	eddies := ed.DetectFromSamples(ssh)
	if len(eddies.Eddies) == 0 {
		p.errorf("no eddies detected in SSH scene")
	}
	for i, e := range eddies.Eddies {
		if e.RadiusKm < ed.MinRadiusKm || e.RadiusKm > ed.MaxRadiusKm {
			p.errorf("eddy %d: radius %.1f km outside mesoscale band [%.0f, %.0f]",
				i, e.RadiusKm, ed.MinRadiusKm, ed.MaxRadiusKm)
		}
	}
	return p
}

// validateReproducibility re-runs the prediction pipeline against the stored
// scene and requires every fixture score to match exactly.
func validateReproducibility(sst, chla, ssh []domain.Sample, predictions []domain.PredictionRecord) *phase {
	p := &phase{name: "prediction reproducibility"}

	calc := predictor.New(
		fixture.Sources(sst, chla, ssh),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
		predictor.WithClock(func() time.Time { return fixture.BaseTime }),
	)

	ctx := context.Background()
	for i, rec := range predictions {
		pred, err := calc.Predict(ctx, rec.Lat, rec.Lon, forecastDays)
		if err != nil {
			p.errorf("prediction %d (%.2f, %.2f): %v", i, rec.Lat, rec.Lon, err)
			continue
		}
		if !floatEq(pred.Scores.Total, rec.PFZScore) {
			p.errorf("prediction %d (%.2f, %.2f): recomputed score %.1f, fixture has %.1f",
				i, rec.Lat, rec.Lon, pred.Scores.Total, rec.PFZScore)
		}
	}
	return p
}

func validateAccuracy(m domain.AccuracyMetrics, predictions []domain.PredictionRecord, catches []domain.CatchRecord) *phase {
	p := &phase{name: "accuracy metrics"}

	if len(predictions) != len(catches) {
		p.errorf("record count mismatch: %d predictions, %d catches",
			len(predictions), len(catches))
	}
	if m.SampleSize != min(len(predictions), len(catches)) {
		p.errorf("sample size %d does not match record count %d",
			m.SampleSize, min(len(predictions), len(catches)))
	}

	// Fixture catches are generated class-aligned with their prediction, so
	// the metrics have hard floors.
	if m.ClassificationAccuracy < 0.99 {
		p.errorf("classification accuracy %.3f below expected 0.99", m.ClassificationAccuracy)
	}
	if m.CPUECorrelation < 0.5 {
		p.errorf("CPUE correlation %.3f below expected 0.5", m.CPUECorrelation)
	}
	if m.SpatialErrorKm > 0.1 {
		p.errorf("spatial error %.2f km, expected co-located records", m.SpatialErrorKm)
	}

	var highs int
	for _, rec := range predictions {
		if rec.PFZScore >= domain.DefaultPFZThresholds.High {
			highs++
		}
	}
	if highs == 0 {
		p.errorf("no high-class predictions in fixture; scene front rows should score 70+")
	} else if m.HitRate < 0.99 {
		p.errorf("hit rate %.3f below expected 0.99", m.HitRate)
	}
	return p
}

// ── Helpers ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
