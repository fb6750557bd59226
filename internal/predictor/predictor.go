// Package predictor combines satellite feature detection, habitat fit, and
// weather operability into a composite potential fishing zone score.
package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

// Detection window half-widths in degrees around the prediction point.
const (
	chlaSampleRadiusDeg = 0.5
	frontWindowDeg      = 2.0
	eddyWindowDeg       = 3.0
)

// typhoonWatchRadiusNM bounds which active storms count as threats.
const typhoonWatchRadiusNM = 500

// SampleSource fetches scattered satellite observations of one field
// (SST, chlorophyll-a, or SSH) inside a bounding box.
type SampleSource interface {
	FetchSamples(ctx context.Context, box domain.BoundingBox) ([]domain.Sample, error)
}

// PointSource fetches the latest scalar value of a field at a point.
type PointSource interface {
	FetchPoint(ctx context.Context, lat, lon float64) (float64, error)
}

// WeatherSource fetches an ensemble marine forecast for a point. Fields the
// upstream model does not provide are nil.
type WeatherSource interface {
	FetchForecast(ctx context.Context, lat, lon float64, days int) (domain.WeatherInputs, error)
}

// TyphoonSource lists currently active storms.
type TyphoonSource interface {
	ActiveTyphoons(ctx context.Context) ([]domain.TyphoonInfo, error)
}

// Weights distribute the composite score across the five stages. Zero or
// negative entries contribute nothing; New renormalizes the rest to sum
// to one.
type Weights struct {
	Habitat float64
	Front   float64
	Eddy    float64
	Weather float64
	Trend   float64
}

// DefaultWeights returns the standard stage weighting.
func DefaultWeights() Weights {
	return Weights{Habitat: 0.30, Front: 0.25, Eddy: 0.20, Weather: 0.15, Trend: 0.10}
}

func (w Weights) sum() float64 {
	return w.Habitat + w.Front + w.Eddy + w.Weather + w.Trend
}

func (w Weights) normalized() Weights {
	total := w.sum()
	if total <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Habitat: w.Habitat / total,
		Front:   w.Front / total,
		Eddy:    w.Eddy / total,
		Weather: w.Weather / total,
		Trend:   w.Trend / total,
	}
}

// Scores holds the per-stage results of one prediction, each on a 0-100
// scale and rounded to one decimal.
type Scores struct {
	Total   float64 `json:"total"`
	Habitat float64 `json:"habitat"`
	Front   float64 `json:"front"`
	Eddy    float64 `json:"eddy"`
	Weather float64 `json:"weather"`
	Trend   float64 `json:"trend"`
}

// Level bands a total score for display.
func (s Scores) Level() string {
	switch {
	case s.Total >= 80:
		return "excellent"
	case s.Total >= 60:
		return "good"
	case s.Total >= 40:
		return "moderate"
	case s.Total >= 20:
		return "poor"
	default:
		return "bad"
	}
}

// Color maps the level to its display hex color.
func (s Scores) Color() string {
	switch {
	case s.Total >= 80:
		return "#28a745"
	case s.Total >= 60:
		return "#17a2b8"
	case s.Total >= 40:
		return "#ffc107"
	case s.Total >= 20:
		return "#fd7e14"
	default:
		return "#dc3545"
	}
}

// Prediction is one assessed point.
type Prediction struct {
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	Time           time.Time         `json:"time"`
	Scores         Scores            `json:"scores"`
	Confidence     float64           `json:"confidence"` // 0-1
	Recommendation string            `json:"recommendation"`
	TargetSpecies  string            `json:"target_species,omitempty"`
	SST            *float64          `json:"sst,omitempty"`
	Chla           *float64          `json:"chla,omitempty"`
	FrontCount     int               `json:"front_count"`
	EddyCount      int               `json:"eddy_count"`
	Operability    string            `json:"operability,omitempty"`
	TyphoonRisk    domain.RiskLevel  `json:"typhoon_risk,omitempty"`
	VesselType     domain.VesselType `json:"vessel_type"`
}

// GridCell is one entry of a regional sweep. Failed cells carry a zero
// score and the "N/A" level rather than aborting the sweep.
type GridCell struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	PFZScore   float64 `json:"pfz_score"`
	Level      string  `json:"level"`
	Color      string  `json:"color"`
	Habitat    float64 `json:"habitat"`
	Front      float64 `json:"front"`
	Eddy       float64 `json:"eddy"`
	Weather    float64 `json:"weather"`
	Confidence float64 `json:"confidence"`
}

// Calculator scores potential fishing zones. Every data source is optional:
// a nil source behaves like a failing one and the affected stage degrades
// to its fallback score, so a partially wired calculator still predicts.
type Calculator struct {
	sstPoint  PointSource
	sstArea   SampleSource
	chlaArea  SampleSource
	sshArea   SampleSource
	weather   WeatherSource
	typhoons  TyphoonSource
	species   *domain.Species
	vessel    domain.VesselType
	weights   Weights
	fronts    *domain.FrontDetector
	eddies    *domain.EddyDetector
	operCalc  *domain.OperabilityCalculator
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithSpecies targets the habitat stage at one catalog species instead of
// the generic curve. Unknown IDs are ignored.
func WithSpecies(id string) Option {
	return func(c *Calculator) {
		if s, ok := domain.SpeciesByID(id); ok {
			c.species = &s
		}
	}
}

// WithVessel selects the fishing method for the weather stage.
func WithVessel(vessel domain.VesselType) Option {
	return func(c *Calculator) {
		c.vessel = vessel
	}
}

// WithWeights overrides the stage weights. They need not sum to one.
func WithWeights(w Weights) Option {
	return func(c *Calculator) {
		c.weights = w
	}
}

// WithTyphoonSource enables the typhoon penalty on the weather stage.
func WithTyphoonSource(src TyphoonSource) Option {
	return func(c *Calculator) {
		c.typhoons = src
	}
}

// WithClock overrides the prediction timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.clock = now
	}
}

// Sources bundles the satellite and weather collaborators of a Calculator.
type Sources struct {
	SSTPoint PointSource
	SSTArea  SampleSource
	ChlaArea SampleSource
	SSHArea  SampleSource
	Weather  WeatherSource
}

// New creates a Calculator. Weights are renormalized to sum to one.
func New(src Sources, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Calculator {
	c := &Calculator{
		sstPoint: src.SSTPoint,
		sstArea:  src.SSTArea,
		chlaArea: src.ChlaArea,
		sshArea:  src.SSHArea,
		weather:  src.Weather,
		vessel:   domain.Longline,
		weights:  DefaultWeights(),
		fronts:   domain.NewFrontDetector(),
		eddies:   domain.NewEddyDetector(),
		logger:   logger,
		metrics:  metrics,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.weights = c.weights.normalized()
	c.operCalc = domain.NewOperabilityCalculator(c.vessel)
	return c
}

// Predict assesses one point. Individual stage failures degrade the score
// and confidence but never fail the prediction; only context cancellation
// propagates as an error.
func (c *Calculator) Predict(ctx context.Context, lat, lon float64, forecastDays int) (Prediction, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return Prediction{}, err
	}
	start := time.Now()

	pred := Prediction{
		Lat:        lat,
		Lon:        lon,
		Time:       c.clock().UTC(),
		VesselType: c.vessel,
	}
	if c.species != nil {
		pred.TargetSpecies = c.species.ID
	}

	var confidences []float64

	habitat, conf := c.habitatStage(ctx, lat, lon, &pred)
	confidences = append(confidences, conf)

	front, conf := c.frontStage(ctx, lat, lon, &pred)
	confidences = append(confidences, conf)

	eddy, conf := c.eddyStage(ctx, lat, lon, &pred)
	confidences = append(confidences, conf)

	weather, conf := c.weatherStage(ctx, lat, lon, forecastDays, &pred)
	confidences = append(confidences, conf)

	// Trend persistence is a placeholder pending a historical archive.
	trend := 60.0
	confidences = append(confidences, 0.6)

	weather = c.applyTyphoonPenalty(ctx, lat, lon, weather, &pred)

	if ctx.Err() != nil {
		return Prediction{}, ctx.Err()
	}

	total := habitat*c.weights.Habitat +
		front*c.weights.Front +
		eddy*c.weights.Eddy +
		weather*c.weights.Weather +
		trend*c.weights.Trend

	var confSum float64
	for _, f := range confidences {
		confSum += f
	}

	pred.Scores = Scores{
		Total:   round1(total),
		Habitat: round1(habitat),
		Front:   round1(front),
		Eddy:    round1(eddy),
		Weather: round1(weather),
		Trend:   round1(trend),
	}
	pred.Confidence = round2(confSum / float64(len(confidences)))
	pred.Recommendation = recommendation(pred)

	if c.metrics != nil {
		c.metrics.Predictions.Inc()
		c.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}
	c.logger.Info("pfz prediction",
		"lat", lat, "lon", lon,
		"score", pred.Scores.Total,
		"confidence", pred.Confidence,
	)
	return pred, nil
}

// PredictGrid sweeps a region at the given resolution in degrees. Cells
// whose prediction fails outright are recorded as unusable placeholders;
// the sweep itself only fails on context cancellation.
func (c *Calculator) PredictGrid(ctx context.Context, box domain.BoundingBox, resolutionDeg float64, forecastDays int) ([]GridCell, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if resolutionDeg <= 0 {
		return nil, fmt.Errorf("invalid grid resolution: %v", resolutionDeg)
	}

	var cells []GridCell
	for lat := box.LatMin; lat <= box.LatMax+1e-9; lat += resolutionDeg {
		for lon := box.LonMin; lon <= box.LonMax+1e-9; lon += resolutionDeg {
			pred, err := c.Predict(ctx, lat, lon, forecastDays)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("grid cell failed", "lat", lat, "lon", lon, "error", err)
				if c.metrics != nil {
					c.metrics.GridCellFailures.Inc()
				}
				cells = append(cells, GridCell{
					Lat: lat, Lon: lon,
					Level: "N/A", Color: "#999999",
				})
				continue
			}
			cells = append(cells, GridCell{
				Lat:        lat,
				Lon:        lon,
				PFZScore:   pred.Scores.Total,
				Level:      pred.Scores.Level(),
				Color:      pred.Scores.Color(),
				Habitat:    pred.Scores.Habitat,
				Front:      pred.Scores.Front,
				Eddy:       pred.Scores.Eddy,
				Weather:    pred.Scores.Weather,
				Confidence: pred.Confidence,
			})
		}
	}
	return cells, nil
}

// habitatStage scores temperature and chlorophyll fit. SST comes from the
// point source; chlorophyll is the mean of samples in a half-degree window.
// A fetch failure falls back to a neutral 50 at low confidence.
func (c *Calculator) habitatStage(ctx context.Context, lat, lon float64, pred *Prediction) (score, confidence float64) {
	sst, sstErr := c.fetchSST(ctx, lat, lon)
	if sstErr != nil {
		c.stageFailed("habitat", sstErr)
		return 50, 0.3
	}

	chla := c.fetchChla(ctx, lat, lon)
	pred.SST = sst
	pred.Chla = chla

	if c.species != nil && sst != nil {
		score = c.species.HabitatScore(*sst, chla)
	} else {
		score = domain.GenericHabitatScore(sst, chla)
	}

	confidence = 0.5
	if sst != nil {
		confidence = 0.9
	}
	return score, confidence
}

func (c *Calculator) fetchSST(ctx context.Context, lat, lon float64) (*float64, error) {
	if c.sstPoint == nil {
		return nil, fmt.Errorf("no sst source configured")
	}
	v, err := c.sstPoint.FetchPoint(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("fetch sst: %w", err)
	}
	return &v, nil
}

// fetchChla returns the window mean, or nil when the source is missing,
// failing, or empty. Chlorophyll is optional everywhere downstream.
func (c *Calculator) fetchChla(ctx context.Context, lat, lon float64) *float64 {
	if c.chlaArea == nil {
		return nil
	}
	samples, err := c.chlaArea.FetchSamples(ctx, domain.PointBox(lat, lon, chlaSampleRadiusDeg))
	if err != nil {
		c.logger.Debug("chla fetch failed", "error", err)
		return nil
	}
	if len(samples) == 0 {
		return nil
	}
	mean := domain.MeanValue(samples)
	return &mean
}

// frontStage detects thermal fronts in a window around the point and
// scores proximity. Failure scores 0 at low confidence.
func (c *Calculator) frontStage(ctx context.Context, lat, lon float64, pred *Prediction) (score, confidence float64) {
	if c.sstArea == nil {
		return 0, 0.3
	}
	samples, err := c.sstArea.FetchSamples(ctx, domain.PointBox(lat, lon, frontWindowDeg))
	if err != nil {
		c.stageFailed("front", err)
		return 0, 0.3
	}

	result := c.fronts.DetectFromSamples(samples)
	pred.FrontCount = len(result.Fronts)
	return domain.FrontScore(lat, lon, result.Fronts, domain.DefaultFrontMaxDistanceKm), 0.8
}

// eddyStage detects mesoscale eddies around the point and scores position
// with the edge preference. Failure scores 0 at low confidence.
func (c *Calculator) eddyStage(ctx context.Context, lat, lon float64, pred *Prediction) (score, confidence float64) {
	if c.sshArea == nil {
		return 0, 0.3
	}
	samples, err := c.sshArea.FetchSamples(ctx, domain.PointBox(lat, lon, eddyWindowDeg))
	if err != nil {
		c.stageFailed("eddy", err)
		return 0, 0.3
	}

	result := c.eddies.DetectFromSamples(samples)
	pred.EddyCount = len(result.Eddies)
	return domain.EddyScore(lat, lon, result.Eddies, domain.PreferEdge), 0.8
}

// weatherStage converts the marine forecast to an operability score.
// A missing forecast takes a neutral 70; so does a fetch failure, at
// slightly lower confidence.
func (c *Calculator) weatherStage(ctx context.Context, lat, lon float64, days int, pred *Prediction) (score, confidence float64) {
	if c.weather == nil {
		return 70, 0.4
	}
	inputs, err := c.weather.FetchForecast(ctx, lat, lon, days)
	if err != nil {
		c.stageFailed("weather", err)
		return 70, 0.4
	}
	if inputs == (domain.WeatherInputs{}) {
		return 70, 0.5
	}

	result := c.operCalc.Calculate(inputs)
	pred.Operability = string(result.Level)
	return result.Score, 0.9
}

// applyTyphoonPenalty subtracts a risk-scaled penalty from the weather
// score. A failing or absent typhoon source leaves the score untouched.
func (c *Calculator) applyTyphoonPenalty(ctx context.Context, lat, lon float64, weather float64, pred *Prediction) float64 {
	if c.typhoons == nil {
		return weather
	}
	storms, err := c.typhoons.ActiveTyphoons(ctx)
	if err != nil {
		c.logger.Debug("typhoon check failed", "error", err)
		return weather
	}

	impact := domain.AssessTyphoonImpact(lat, lon, storms, typhoonWatchRadiusNM)
	if !impact.HasImpact {
		return weather
	}

	pred.TyphoonRisk = impact.MaxRiskLevel
	return math.Max(0, weather-riskPenalty(impact.MaxRiskLevel))
}

func riskPenalty(level domain.RiskLevel) float64 {
	switch level {
	case domain.RiskLow:
		return 10
	case domain.RiskModerate:
		return 30
	case domain.RiskHigh:
		return 60
	case domain.RiskExtreme:
		return 100
	default:
		return 0
	}
}

func (c *Calculator) stageFailed(stage string, err error) {
	c.logger.Warn("prediction stage degraded", "stage", stage, "error", err)
	if c.metrics != nil {
		c.metrics.StageFailures.WithLabelValues(stage).Inc()
	}
}

// recommendation renders the operational advice for a prediction: a
// five-tier base line plus condition-specific tips.
func recommendation(pred Prediction) string {
	var base string
	switch {
	case pred.Scores.Total >= 80:
		base = "Prime fishing ground, work it first."
	case pred.Scores.Total >= 60:
		base = "Good conditions, suitable for operations."
	case pred.Scores.Total >= 40:
		base = "Fair conditions, worth a try."
	case pred.Scores.Total >= 20:
		base = "Weak conditions, hold off or relocate."
	default:
		base = "Not recommended, look at other grounds."
	}

	var tips []string
	if pred.Scores.Front >= 50 {
		tips = append(tips, "thermal front nearby, baitfish may aggregate")
	}
	if pred.Scores.Eddy >= 50 {
		tips = append(tips, "eddy activity, watch the current set")
	}
	if pred.Scores.Weather < 50 {
		tip := "weather is marginal"
		if pred.Operability != "" {
			tip = fmt.Sprintf("weather is marginal (%s)", pred.Operability)
		}
		tips = append(tips, tip)
	}
	if pred.TyphoonRisk != "" && pred.TyphoonRisk != domain.RiskNone {
		tips = append(tips, fmt.Sprintf("typhoon risk: %s", pred.TyphoonRisk))
	}

	if len(tips) == 0 {
		return base
	}
	return base + " " + strings.Join(tips, "; ") + "."
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
