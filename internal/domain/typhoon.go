package domain

import (
	"fmt"
	"math"
	"sort"
)

// TyphoonCategory is the JMA intensity classification.
type TyphoonCategory string

const (
	TropicalDepression  TyphoonCategory = "TD"  // below 34 kt
	TropicalStorm       TyphoonCategory = "TS"  // 34-47 kt
	SevereTropicalStorm TyphoonCategory = "STS" // 48-63 kt
	Typhoon             TyphoonCategory = "TY"  // 64-84 kt
	SevereTyphoon       TyphoonCategory = "STY" // 85 kt and up
)

// ClassifyTyphoonCategory maps a maximum sustained wind in knots to the
// JMA category scale.
func ClassifyTyphoonCategory(maxWindKt float64) TyphoonCategory {
	switch {
	case maxWindKt >= 85:
		return SevereTyphoon
	case maxWindKt >= 64:
		return Typhoon
	case maxWindKt >= 48:
		return SevereTropicalStorm
	case maxWindKt >= 34:
		return TropicalStorm
	default:
		return TropicalDepression
	}
}

// RiskLevel grades typhoon exposure for a position.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskExtreme  RiskLevel = "extreme"
)

// riskRank orders levels for sorting, most severe first.
func riskRank(level RiskLevel) int {
	switch level {
	case RiskExtreme:
		return 0
	case RiskHigh:
		return 1
	case RiskModerate:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

// TyphoonPosition is one fix of an active storm.
type TyphoonPosition struct {
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	MaxWindKt          float64 `json:"max_wind_kt"`
	CentralPressureHPa float64 `json:"central_pressure_hpa"`
	MovementDir        float64 `json:"movement_dir"` // degrees, 0 = north
	MovementSpeedKt    float64 `json:"movement_speed_kt"`
}

// TyphoonInfo describes an active storm.
type TyphoonInfo struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category TyphoonCategory `json:"category"`
	Current  TyphoonPosition `json:"current"`
	Source   string          `json:"source,omitempty"`
}

// MaxWindMS returns the max sustained wind in m/s.
func (t TyphoonInfo) MaxWindMS() float64 { return t.Current.MaxWindKt * 0.514444 }

// IsTyphoon reports whether the storm has reached typhoon strength.
func (t TyphoonInfo) IsTyphoon() bool {
	return t.Category == Typhoon || t.Category == SevereTyphoon
}

// TyphoonThreat is the assessed exposure of a position to one storm.
type TyphoonThreat struct {
	Typhoon        TyphoonInfo `json:"typhoon"`
	DistanceNM     float64     `json:"distance_nm"`
	DistanceKm     float64     `json:"distance_km"`
	HoursToImpact  float64     `json:"hours_to_impact,omitempty"` // 0 when stationary
	RiskLevel      RiskLevel   `json:"risk_level"`
	Bearing        float64     `json:"bearing_from_typhoon"` // degrees from storm to position
	Recommendation string      `json:"recommendation"`
}

// TyphoonImpact summarizes all storm threats to a position.
type TyphoonImpact struct {
	HasImpact      bool            `json:"has_impact"`
	MaxRiskLevel   RiskLevel       `json:"max_risk_level"`
	Recommendation string          `json:"recommendation"`
	Threats        []TyphoonThreat `json:"impacts"`
}

// Risk distance thresholds in nautical miles, widened for stronger storms
// via the wind factor in AssessRiskLevel.
const (
	riskExtremeNM  = 100.0
	riskHighNM     = 200.0
	riskModerateNM = 300.0
	riskLowNM      = 500.0
)

// AssessRiskLevel grades exposure from distance and storm strength.
// Stronger storms shrink the effective distance: winds of 64/85/100 kt
// scale it by 1.1/1.3/1.5 respectively.
func AssessRiskLevel(distanceNM, maxWindKt float64) RiskLevel {
	windFactor := 1.0
	switch {
	case maxWindKt >= 100:
		windFactor = 1.5
	case maxWindKt >= 85:
		windFactor = 1.3
	case maxWindKt >= 64:
		windFactor = 1.1
	}

	effective := distanceNM / windFactor
	switch {
	case effective < riskExtremeNM:
		return RiskExtreme
	case effective < riskHighNM:
		return RiskHigh
	case effective < riskModerateNM:
		return RiskModerate
	case effective < riskLowNM:
		return RiskLow
	default:
		return RiskNone
	}
}

// AssessTyphoonImpact evaluates every active storm against a position.
// Storms beyond 1.5× the watch radius are ignored; the rest are graded and
// sorted most severe first. An empty storm list yields a no-impact report.
func AssessTyphoonImpact(lat, lon float64, typhoons []TyphoonInfo, radiusNM float64) TyphoonImpact {
	var threats []TyphoonThreat

	for _, t := range typhoons {
		distNM := HaversineNM(lat, lon, t.Current.Lat, t.Current.Lon)
		if distNM > radiusNM*1.5 {
			continue
		}

		var hours float64
		if t.Current.MovementSpeedKt > 0 {
			hours = distNM / t.Current.MovementSpeedKt
		}

		level := AssessRiskLevel(distNM, t.Current.MaxWindKt)
		threats = append(threats, TyphoonThreat{
			Typhoon:        t,
			DistanceNM:     round1(distNM),
			DistanceKm:     round1(Haversine(lat, lon, t.Current.Lat, t.Current.Lon)),
			HoursToImpact:  round1(hours),
			RiskLevel:      level,
			Bearing:        Bearing(t.Current.Lat, t.Current.Lon, lat, lon),
			Recommendation: riskRecommendation(level, hours),
		})
	}

	sort.SliceStable(threats, func(i, j int) bool {
		return riskRank(threats[i].RiskLevel) < riskRank(threats[j].RiskLevel)
	})

	impact := TyphoonImpact{
		MaxRiskLevel:   RiskNone,
		Recommendation: riskRecommendation(RiskNone, 0),
		Threats:        threats,
	}
	if len(threats) > 0 {
		impact.HasImpact = true
		impact.MaxRiskLevel = threats[0].RiskLevel
		impact.Recommendation = riskRecommendation(impact.MaxRiskLevel, 0)
	}
	return impact
}

func riskRecommendation(level RiskLevel, hoursToImpact float64) string {
	var base string
	switch level {
	case RiskExtreme:
		base = "Extreme danger. Stop operations and run for port at full speed."
	case RiskHigh:
		base = "High risk. Return to port within 24 hours."
	case RiskModerate:
		base = "Moderate risk. Track the storm closely and prepare to withdraw."
	case RiskLow:
		base = "Low risk. Keep monitoring the track, operations may continue."
	default:
		base = "No typhoon impact, normal operations."
	}
	if hoursToImpact > 0 && hoursToImpact < 48 {
		base += fmt.Sprintf(" Impact possible in about %.0f hours.", hoursToImpact)
	}
	return base
}

// Bearing returns the initial great-circle bearing from point 1 to point 2
// in degrees, 0 = north, increasing clockwise.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	x := math.Sin(dlon) * math.Cos(rlat2)
	y := math.Cos(rlat1)*math.Sin(rlat2) - math.Sin(rlat1)*math.Cos(rlat2)*math.Cos(dlon)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}
