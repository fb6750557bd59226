package domain

import (
	"math"
	"sort"
	"time"
)

// Default eddy-detection parameters.
const (
	DefaultEddySSHThreshold = 0.05  // m of sea-level anomaly
	DefaultEddyMinRadiusKm  = 50.0  // mesoscale lower bound
	DefaultEddyMaxRadiusKm  = 300.0 // mesoscale upper bound
	DefaultEddyResolutionKm = 10.0  // metadata only
)

// EddyType classifies an eddy by the sign of its SSH anomaly.
type EddyType string

const (
	Cyclonic     EddyType = "cyclonic"     // cold core, negative anomaly, upwelling
	Anticyclonic EddyType = "anticyclonic" // warm core, positive anomaly, downwelling
)

// Rotation is the spin sense of an eddy as seen from above.
type Rotation string

const (
	Clockwise        Rotation = "CW"
	CounterClockwise Rotation = "CCW"
)

// FishingPreference selects the eddy-relative position rewarded by EddyScore.
type FishingPreference string

const (
	PreferEdge         FishingPreference = "edge"   // frontal zone at the rim, baitfish
	PreferCenter       FishingPreference = "center" // stable core, large pelagics
	PreferCyclonic     FishingPreference = "cyclonic"
	PreferAnticyclonic FishingPreference = "anticyclonic"
)

// Eddy is a detected coherent SSH anomaly region.
type Eddy struct {
	Type       EddyType `json:"type"`
	CenterLat  float64  `json:"center_lat"`
	CenterLon  float64  `json:"center_lon"`
	RadiusKm   float64  `json:"radius_km"`
	SSHAnomaly float64  `json:"ssh_anomaly_m"` // peak: positive anticyclonic, negative cyclonic
	Intensity  float64  `json:"intensity"`     // 0-100 composite of anomaly and size
	Rotation   Rotation `json:"rotation"`
}

// IsCyclonic reports whether the eddy has a cold (negative anomaly) core.
func (e Eddy) IsCyclonic() bool { return e.Type == Cyclonic }

// Description summarizes the eddy's fishery relevance.
func (e Eddy) Description() string {
	if e.IsCyclonic() {
		return "cold-core eddy, upwelling zone, nutrient rich"
	}
	return "warm-core eddy, stable water mass, attracts large pelagics"
}

// rotationFor derives spin sense from hemisphere and type: in the Northern
// hemisphere cyclonic eddies rotate counter-clockwise and anticyclonic
// clockwise; the Southern hemisphere reverses both.
func rotationFor(eddyType EddyType, centerLat float64) Rotation {
	if centerLat >= 0 {
		if eddyType == Cyclonic {
			return CounterClockwise
		}
		return Clockwise
	}
	if eddyType == Cyclonic {
		return Clockwise
	}
	return CounterClockwise
}

// EddyDetectionResult holds detected eddies sorted by descending intensity,
// plus the sea-level anomaly field they were extracted from.
type EddyDetectionResult struct {
	Eddies        []Eddy
	SLAField      ScalarGrid
	DetectionTime time.Time
}

// CyclonicCount returns the number of cold-core eddies.
func (r EddyDetectionResult) CyclonicCount() int {
	var n int
	for _, e := range r.Eddies {
		if e.IsCyclonic() {
			n++
		}
	}
	return n
}

// AnticyclonicCount returns the number of warm-core eddies.
func (r EddyDetectionResult) AnticyclonicCount() int {
	return len(r.Eddies) - r.CyclonicCount()
}

// EddyDetector finds mesoscale eddies as coherent regions of the sea-level
// anomaly field beyond a threshold.
type EddyDetector struct {
	SSHThreshold float64 // m; |SLA| above this marks a candidate cell
	MinRadiusKm  float64
	MaxRadiusKm  float64
	ResolutionKm float64 // nominal source resolution, metadata only
}

// NewEddyDetector returns a detector with the default parameters.
func NewEddyDetector() *EddyDetector {
	return &EddyDetector{
		SSHThreshold: DefaultEddySSHThreshold,
		MinRadiusKm:  DefaultEddyMinRadiusKm,
		MaxRadiusKm:  DefaultEddyMaxRadiusKm,
		ResolutionKm: DefaultEddyResolutionKm,
	}
}

// DetectFromSamples converts scattered SSH samples to sea-level anomaly by
// subtracting the field mean, grids the anomalies (unresolved cells filled
// with zero anomaly), and detects eddies. Empty input yields an empty result.
func (d *EddyDetector) DetectFromSamples(samples []Sample) EddyDetectionResult {
	if len(samples) == 0 {
		return EddyDetectionResult{DetectionTime: clock.Now()}
	}

	mean := MeanValue(samples)
	sla := make([]Sample, len(samples))
	for i, s := range samples {
		s.Value -= mean
		sla[i] = s
	}

	return d.DetectGrid(GridFromSamples(sla, 0))
}

// DetectGrid detects eddies on a regular sea-level anomaly grid.
// Positive and negative anomalies are labeled in two independent passes.
func (d *EddyDetector) DetectGrid(sla ScalarGrid) EddyDetectionResult {
	if sla.IsEmpty() {
		return EddyDetectionResult{SLAField: sla, DetectionTime: clock.Now()}
	}

	var eddies []Eddy
	for _, pass := range []struct {
		eddyType EddyType
		keep     func(v float64) bool
	}{
		{Anticyclonic, func(v float64) bool { return v > d.SSHThreshold }},
		{Cyclonic, func(v float64) bool { return v < -d.SSHThreshold }},
	} {
		mask := make([]bool, len(sla.Values))
		for i, v := range sla.Values {
			mask[i] = pass.keep(v)
		}
		for _, component := range LabelComponents(mask, sla.Rows, sla.Cols) {
			if eddy, ok := d.extractEddy(sla, component, pass.eddyType); ok {
				eddies = append(eddies, eddy)
			}
		}
	}

	sort.SliceStable(eddies, func(i, j int) bool {
		return eddies[i].Intensity > eddies[j].Intensity
	})

	return EddyDetectionResult{
		Eddies:        eddies,
		SLAField:      sla,
		DetectionTime: clock.Now(),
	}
}

// extractEddy derives an eddy from one labeled component, or reports false
// when the component is too small or its radius falls outside the
// configured mesoscale band.
func (d *EddyDetector) extractEddy(sla ScalarGrid, component []Cell, eddyType EddyType) (Eddy, bool) {
	if len(component) < 4 {
		return Eddy{}, false
	}

	var rowSum, colSum float64
	for _, cell := range component {
		rowSum += float64(cell.Row)
		colSum += float64(cell.Col)
	}
	n := float64(len(component))
	centerLat := sla.Bounds.LatMin + (rowSum/n)*sla.LatStep()
	centerLon := sla.Bounds.LonMin + (colSum/n)*sla.LonStep()

	// Pixel area uses a flat 111 km/degree in both axes, with no
	// cosine-latitude correction for longitude. This understates east-west
	// extent away from the equator; downstream scoring is calibrated
	// against it, so it stays.
	pixelAreaKm2 := sla.LatStep() * sla.LonStep() * 111 * 111
	radiusKm := math.Sqrt(n * pixelAreaKm2 / math.Pi)
	if radiusKm < d.MinRadiusKm || radiusKm > d.MaxRadiusKm {
		return Eddy{}, false
	}

	peak := sla.At(component[0].Row, component[0].Col)
	for _, cell := range component[1:] {
		v := sla.At(cell.Row, cell.Col)
		if eddyType == Anticyclonic && v > peak {
			peak = v
		}
		if eddyType == Cyclonic && v < peak {
			peak = v
		}
	}

	intensity := math.Min(100, math.Abs(peak)*500+radiusKm*0.2)
	intensity = math.Max(0, intensity)

	return Eddy{
		Type:       eddyType,
		CenterLat:  centerLat,
		CenterLon:  centerLon,
		RadiusKm:   radiusKm,
		SSHAnomaly: peak,
		Intensity:  intensity,
		Rotation:   rotationFor(eddyType, centerLat),
	}, true
}

// EddyScore rates a point's position relative to detected eddies on a
// 0-100 scale. Distance to each centroid is normalized by the eddy's
// radius; the preference selects which relative positions score highest:
//
//   - PreferEdge: full score between 0.7 and 1.3 radii, tapering to zero
//     at the center and at 2 radii.
//   - PreferCenter: full score inside 0.5 radii, zero beyond 1 radius.
//   - PreferCyclonic / PreferAnticyclonic: only matching eddies count,
//     linear falloff of 50 points per radius.
//   - anything else: the same linear falloff without type filtering.
//
// The position score is scaled by 0.5 + 0.5·(intensity/100) and the best
// eddy wins. No qualifying eddies scores 0.
func EddyScore(lat, lon float64, eddies []Eddy, preference FishingPreference) float64 {
	best := 0.0
	for _, eddy := range eddies {
		distKm := Haversine(lat, lon, eddy.CenterLat, eddy.CenterLon)
		relative := distKm / math.Max(1, eddy.RadiusKm)

		var position float64
		switch preference {
		case PreferEdge:
			switch {
			case relative >= 0.7 && relative <= 1.3:
				position = 100
			case relative < 0.7:
				position = relative / 0.7 * 70
			case relative < 2.0:
				position = (2.0 - relative) / 0.7 * 70
			default:
				position = 0
			}
		case PreferCenter:
			switch {
			case relative <= 0.5:
				position = 100
			case relative <= 1.0:
				position = (1.0 - relative) * 2 * 100
			default:
				position = 0
			}
		case PreferCyclonic:
			if !eddy.IsCyclonic() {
				continue
			}
			position = math.Max(0, 100-relative*50)
		case PreferAnticyclonic:
			if eddy.IsCyclonic() {
				continue
			}
			position = math.Max(0, 100-relative*50)
		default:
			position = math.Max(0, 100-relative*50)
		}

		score := position * (0.5 + 0.5*eddy.Intensity/100)
		if score > best {
			best = score
		}
	}
	return best
}
