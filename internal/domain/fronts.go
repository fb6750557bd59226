package domain

import (
	"math"
	"sort"
	"time"
)

// Default front-detection parameters.
const (
	DefaultFrontGradientThreshold = 0.5  // °C/km
	DefaultFrontMinLengthKm       = 10.0 // km
	DefaultFrontResolutionKm      = 4.0  // km per pixel
	DefaultFrontMaxDistanceKm     = 50.0 // scoring influence radius
)

// GeoPoint is a (lat, lon) coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FrontSegment is one connected high-gradient region of the temperature
// field. Coordinates are in the row-major order of the labeling pass, and
// LengthKm chains haversine distances between successive coordinates in
// that order — not along a traced boundary. Blob-shaped regions can
// therefore over- or under-state true front length; downstream scoring
// depends on this behavior, so it is preserved.
type FrontSegment struct {
	Coordinates  []GeoPoint `json:"coordinates"`
	GradientMean float64    `json:"gradient_mean"` // °C/km
	GradientMax  float64    `json:"gradient_max"`  // °C/km
	LengthKm     float64    `json:"length_km"`
}

// Start returns the first coordinate, or the zero point if empty.
func (f FrontSegment) Start() GeoPoint {
	if len(f.Coordinates) == 0 {
		return GeoPoint{}
	}
	return f.Coordinates[0]
}

// End returns the last coordinate, or the zero point if empty.
func (f FrontSegment) End() GeoPoint {
	if len(f.Coordinates) == 0 {
		return GeoPoint{}
	}
	return f.Coordinates[len(f.Coordinates)-1]
}

// FrontDetectionResult holds detected fronts sorted by descending max
// gradient, plus the gradient field they were extracted from.
type FrontDetectionResult struct {
	Fronts        []FrontSegment
	GradientField ScalarGrid
	DetectionTime time.Time
}

// TotalLengthKm sums the length of all detected fronts.
func (r FrontDetectionResult) TotalLengthKm() float64 {
	var total float64
	for _, f := range r.Fronts {
		total += f.LengthKm
	}
	return total
}

// FrontDetector finds thermal fronts: regions where the horizontal sea
// surface temperature gradient exceeds a threshold, a proxy for water-mass
// boundaries where forage fish aggregate.
type FrontDetector struct {
	GradientThreshold float64 // °C/km; cells above this are front candidates
	MinLengthKm       float64 // segments shorter than this are discarded
	ResolutionKm      float64 // km per pixel, converts gradient to °C/km
}

// NewFrontDetector returns a detector with the default parameters.
func NewFrontDetector() *FrontDetector {
	return &FrontDetector{
		GradientThreshold: DefaultFrontGradientThreshold,
		MinLengthKm:       DefaultFrontMinLengthKm,
		ResolutionKm:      DefaultFrontResolutionKm,
	}
}

// DetectFromSamples grids scattered SST samples and detects fronts.
// Unresolved grid cells are filled with the field mean. Empty input yields
// an empty result.
func (d *FrontDetector) DetectFromSamples(samples []Sample) FrontDetectionResult {
	if len(samples) == 0 {
		return FrontDetectionResult{DetectionTime: clock.Now()}
	}
	grid := GridFromSamples(samples, MeanValue(samples))
	return d.DetectGrid(grid)
}

// DetectGrid detects fronts on a regular temperature grid.
func (d *FrontDetector) DetectGrid(grid ScalarGrid) FrontDetectionResult {
	if grid.IsEmpty() {
		return FrontDetectionResult{DetectionTime: clock.Now()}
	}

	gradient := d.gradientField(grid)

	mask := make([]bool, len(gradient.Values))
	for i, g := range gradient.Values {
		mask[i] = g > d.GradientThreshold
	}

	var fronts []FrontSegment
	for _, component := range LabelComponents(mask, grid.Rows, grid.Cols) {
		if len(component) < 3 {
			continue
		}

		coords := make([]GeoPoint, len(component))
		gradMax := 0.0
		gradSum := 0.0
		for i, cell := range component {
			lat, lon := grid.CellCoords(cell.Row, cell.Col)
			coords[i] = GeoPoint{Lat: lat, Lon: lon}
			g := gradient.At(cell.Row, cell.Col)
			gradSum += g
			if g > gradMax {
				gradMax = g
			}
		}

		length := chainLengthKm(coords)
		if length < d.MinLengthKm {
			continue
		}

		fronts = append(fronts, FrontSegment{
			Coordinates:  coords,
			GradientMean: gradSum / float64(len(component)),
			GradientMax:  gradMax,
			LengthKm:     length,
		})
	}

	sort.SliceStable(fronts, func(i, j int) bool {
		return fronts[i].GradientMax > fronts[j].GradientMax
	})

	return FrontDetectionResult{
		Fronts:        fronts,
		GradientField: gradient,
		DetectionTime: clock.Now(),
	}
}

// gradientField computes the gradient magnitude in °C/km via forward
// finite differences along each axis. Differences are zero at the far
// edges rather than wrapping or padding with values, so a uniform field
// produces a uniformly zero gradient.
func (d *FrontDetector) gradientField(grid ScalarGrid) ScalarGrid {
	values := make([]float64, len(grid.Values))
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			var dy, dx float64
			if r < grid.Rows-1 {
				dy = grid.At(r+1, c) - grid.At(r, c)
			}
			if c < grid.Cols-1 {
				dx = grid.At(r, c+1) - grid.At(r, c)
			}
			values[r*grid.Cols+c] = math.Hypot(dx, dy) / d.ResolutionKm
		}
	}
	return ScalarGrid{Values: values, Rows: grid.Rows, Cols: grid.Cols, Bounds: grid.Bounds}
}

// chainLengthKm sums haversine distances between successive coordinates.
func chainLengthKm(coords []GeoPoint) float64 {
	var total float64
	for i := 0; i+1 < len(coords); i++ {
		total += Haversine(coords[i].Lat, coords[i].Lon, coords[i+1].Lat, coords[i+1].Lon)
	}
	return total
}

// FrontScore rates a point's proximity to detected fronts on a 0-100
// scale. The nearest front coordinate sets a linear distance score within
// maxDistanceKm; the owning front's max gradient adds a bonus of up to 20
// points, with the sum capped at 100. Points beyond maxDistanceKm of every
// front, or an empty front list, score 0.
func FrontScore(lat, lon float64, fronts []FrontSegment, maxDistanceKm float64) float64 {
	if len(fronts) == 0 {
		return 0
	}

	minDistance := math.Inf(1)
	maxGradient := 0.0
	for _, front := range fronts {
		for _, p := range front.Coordinates {
			if dist := Haversine(lat, lon, p.Lat, p.Lon); dist < minDistance {
				minDistance = dist
				maxGradient = front.GradientMax
			}
		}
	}

	if minDistance > maxDistanceKm {
		return 0
	}

	distanceScore := 100 * (1 - minDistance/maxDistanceKm)
	gradientBonus := math.Min(20, maxGradient*10)
	return math.Min(100, distanceScore+gradientBonus)
}
