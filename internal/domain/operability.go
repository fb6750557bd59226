package domain

import (
	"fmt"
	"math"
)

// VesselType identifies a fishing method with distinct weather tolerances.
type VesselType string

const (
	PurseSeine   VesselType = "purse_seine"
	Longline     VesselType = "longline"
	PoleAndLine  VesselType = "pole_and_line"
	Gillnet      VesselType = "gillnet"
	Trawl        VesselType = "trawl"
	SquidJigging VesselType = "squid_jigging"
	General      VesselType = "general"
)

// ParseVesselType maps a vessel-type string to its enum, falling back to
// General for unrecognized input rather than failing. Boundary callers pass
// user-supplied strings and degraded input must not break a prediction.
func ParseVesselType(s string) VesselType {
	switch VesselType(s) {
	case PurseSeine, Longline, PoleAndLine, Gillnet, Trawl, SquidJigging, General:
		return VesselType(s)
	default:
		return General
	}
}

// OperabilityThresholds are the weather limits for one fishing method.
type OperabilityThresholds struct {
	WindOptimal      float64 // m/s; full score at or below
	WindMax          float64 // m/s; zero score at or above
	WaveOptimal      float64 // m
	WaveMax          float64 // m
	VisibilityMin    float64 // m; zero score at or below
	PrecipitationMax float64 // mm/h
}

// vesselThresholds is the per-method limit table. Methods that handle gear
// at the surface (purse seine, pole and line) tolerate less wind and sea
// than towed or drifting gear.
var vesselThresholds = map[VesselType]OperabilityThresholds{
	PurseSeine:   {WindOptimal: 7, WindMax: 12, WaveOptimal: 1.5, WaveMax: 2.5, VisibilityMin: 3000, PrecipitationMax: 5},
	Longline:     {WindOptimal: 10, WindMax: 15, WaveOptimal: 2, WaveMax: 3.5, VisibilityMin: 2000, PrecipitationMax: 10},
	PoleAndLine:  {WindOptimal: 5, WindMax: 10, WaveOptimal: 1, WaveMax: 2, VisibilityMin: 5000, PrecipitationMax: 3},
	Gillnet:      {WindOptimal: 8, WindMax: 13, WaveOptimal: 1.5, WaveMax: 3, VisibilityMin: 2000, PrecipitationMax: 8},
	Trawl:        {WindOptimal: 12, WindMax: 18, WaveOptimal: 2.5, WaveMax: 4, VisibilityMin: 1000, PrecipitationMax: 15},
	SquidJigging: {WindOptimal: 6, WindMax: 11, WaveOptimal: 1.2, WaveMax: 2.2, VisibilityMin: 3000, PrecipitationMax: 5},
	General:      {WindOptimal: 10, WindMax: 15, WaveOptimal: 2, WaveMax: 3, VisibilityMin: 2000, PrecipitationMax: 10},
}

// ThresholdsFor returns the limit table entry for a vessel type, falling
// back to General.
func ThresholdsFor(vessel VesselType) OperabilityThresholds {
	if t, ok := vesselThresholds[vessel]; ok {
		return t
	}
	return vesselThresholds[General]
}

// OperabilityLevel is the qualitative banding of an operability score.
type OperabilityLevel string

const (
	OperabilityExcellent OperabilityLevel = "excellent" // 90-100
	OperabilityGood      OperabilityLevel = "good"      // 70-89
	OperabilityModerate  OperabilityLevel = "moderate"  // 50-69
	OperabilityMarginal  OperabilityLevel = "marginal"  // 30-49
	OperabilityPoor      OperabilityLevel = "poor"      // 10-29
	OperabilityDangerous OperabilityLevel = "dangerous" // below 10
)

// Composite weights for the four operability dimensions.
const (
	weightWind          = 0.40
	weightWave          = 0.35
	weightVisibility    = 0.15
	weightPrecipitation = 0.10
)

// OperabilityResult is the weather-suitability assessment for one vessel
// type under one set of conditions.
type OperabilityResult struct {
	Score              float64          `json:"score"`
	Level              OperabilityLevel `json:"level"`
	WindScore          float64          `json:"wind_score"`
	WaveScore          float64          `json:"wave_score"`
	VisibilityScore    float64          `json:"visibility_score"`
	PrecipitationScore float64          `json:"precipitation_score"`
	LimitingFactor     string           `json:"limiting_factor"`
	Recommendation     string           `json:"recommendation"`
}

// IsOperable reports whether conditions permit working at all (moderate
// band or better).
func (r OperabilityResult) IsOperable() bool { return r.Score >= 50 }

// WeatherInputs are the observed or forecast conditions. Wave, visibility,
// and precipitation are optional: a nil pointer means the value was absent
// upstream and takes a benign default sub-score (80 for wave and
// visibility, 100 for precipitation).
type WeatherInputs struct {
	WindSpeed     float64  // m/s, required
	WaveHeight    *float64 // m
	Visibility    *float64 // m
	Precipitation *float64 // mm/h
}

// OperabilityCalculator scores how workable the weather is for one vessel
// type.
type OperabilityCalculator struct {
	vessel     VesselType
	thresholds OperabilityThresholds
}

// NewOperabilityCalculator creates a calculator for the given vessel type.
func NewOperabilityCalculator(vessel VesselType) *OperabilityCalculator {
	return &OperabilityCalculator{vessel: vessel, thresholds: ThresholdsFor(vessel)}
}

// Calculate maps conditions to a 0-100 operability assessment.
func (c *OperabilityCalculator) Calculate(in WeatherInputs) OperabilityResult {
	windScore := c.windScore(in.WindSpeed)

	waveScore := 80.0
	if in.WaveHeight != nil {
		waveScore = c.waveScore(*in.WaveHeight)
	}
	visScore := 80.0
	if in.Visibility != nil {
		visScore = c.visibilityScore(*in.Visibility)
	}
	precipScore := 100.0
	if in.Precipitation != nil {
		precipScore = c.precipitationScore(*in.Precipitation)
	}

	total := windScore*weightWind + waveScore*weightWave +
		visScore*weightVisibility + precipScore*weightPrecipitation

	limiting := limitingFactor(windScore, waveScore, visScore, precipScore)
	level := operabilityLevel(total)

	return OperabilityResult{
		Score:              round1(total),
		Level:              level,
		WindScore:          round1(windScore),
		WaveScore:          round1(waveScore),
		VisibilityScore:    round1(visScore),
		PrecipitationScore: round1(precipScore),
		LimitingFactor:     limiting,
		Recommendation:     operabilityRecommendation(level, limiting),
	}
}

// windScore: 100 at or below the optimal wind, linear decay to 0 at max.
func (c *OperabilityCalculator) windScore(windSpeed float64) float64 {
	return linearDecay(windSpeed, c.thresholds.WindOptimal, c.thresholds.WindMax)
}

// waveScore: 100 at or below the optimal wave height, linear decay to 0 at max.
func (c *OperabilityCalculator) waveScore(waveHeight float64) float64 {
	return linearDecay(waveHeight, c.thresholds.WaveOptimal, c.thresholds.WaveMax)
}

// visibilityScore: 100 at 10 km or better, 0 at or below the vessel's
// minimum, logarithmic in between (closer to how visibility is perceived
// than a linear ramp).
func (c *OperabilityCalculator) visibilityScore(visibility float64) float64 {
	const excellent = 10000.0
	minVis := c.thresholds.VisibilityMin
	switch {
	case visibility >= excellent:
		return 100
	case visibility <= minVis:
		return 0
	default:
		return 100 * math.Log(visibility/minVis) / math.Log(excellent/minVis)
	}
}

// precipitationScore: 100 when dry, linear decay to 0 at the vessel's max.
func (c *OperabilityCalculator) precipitationScore(precipitation float64) float64 {
	switch {
	case precipitation <= 0:
		return 100
	case precipitation >= c.thresholds.PrecipitationMax:
		return 0
	default:
		return math.Max(0, 100*(1-precipitation/c.thresholds.PrecipitationMax))
	}
}

func linearDecay(value, optimal, maximum float64) float64 {
	switch {
	case value <= optimal:
		return 100
	case value >= maximum:
		return 0
	default:
		return math.Max(0, 100*(1-(value-optimal)/(maximum-optimal)))
	}
}

// limitingFactor names the lowest-scoring dimension. Ties resolve in the
// fixed order wind, wave, visibility, precipitation.
func limitingFactor(wind, wave, vis, precip float64) string {
	factors := []struct {
		name  string
		score float64
	}{
		{"wind", wind},
		{"wave", wave},
		{"visibility", vis},
		{"precipitation", precip},
	}
	lowest := factors[0]
	for _, f := range factors[1:] {
		if f.score < lowest.score {
			lowest = f
		}
	}
	return lowest.name
}

func operabilityLevel(score float64) OperabilityLevel {
	switch {
	case score >= 90:
		return OperabilityExcellent
	case score >= 70:
		return OperabilityGood
	case score >= 50:
		return OperabilityModerate
	case score >= 30:
		return OperabilityMarginal
	case score >= 10:
		return OperabilityPoor
	default:
		return OperabilityDangerous
	}
}

func operabilityRecommendation(level OperabilityLevel, limiting string) string {
	switch level {
	case OperabilityExcellent:
		return "Excellent conditions, make the most of the window."
	case OperabilityGood:
		return "Good conditions, normal operations."
	case OperabilityModerate:
		return fmt.Sprintf("Moderate conditions (%s), stay alert.", limiting)
	case OperabilityMarginal:
		return fmt.Sprintf("Marginal conditions (%s), assess the risk before setting gear.", limiting)
	case OperabilityPoor:
		return fmt.Sprintf("Operations not advised (%s), consider returning to port.", limiting)
	default:
		return "Dangerous conditions. Stop operations and seek shelter."
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
