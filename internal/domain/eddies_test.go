package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gaussianGrid builds a sea-level anomaly field with one Gaussian feature
// of the given peak amplitude centered on the grid.
func gaussianGrid(rows, cols int, bounds BoundingBox, peak, sigmaCells float64) ScalarGrid {
	cr, cc := float64(rows-1)/2, float64(cols-1)/2
	return makeGrid(rows, cols, bounds, func(r, c int) float64 {
		d2 := (float64(r)-cr)*(float64(r)-cr) + (float64(c)-cc)*(float64(c)-cc)
		return peak * math.Exp(-d2/(2*sigmaCells*sigmaCells))
	})
}

func TestEddyDetector_DetectGrid(t *testing.T) {
	detector := NewEddyDetector()
	bounds := BoundingBox{LatMin: 20, LatMax: 21, LonMin: 120, LonMax: 121}

	t.Run("empty grid", func(t *testing.T) {
		result := detector.DetectGrid(ScalarGrid{})
		assert.Empty(t, result.Eddies)
	})

	t.Run("flat field has no eddies", func(t *testing.T) {
		grid := makeGrid(11, 11, bounds, func(r, c int) float64 { return 0.01 })
		result := detector.DetectGrid(grid)
		assert.Empty(t, result.Eddies)
	})

	t.Run("positive anomaly bump is anticyclonic", func(t *testing.T) {
		grid := gaussianGrid(21, 21, bounds, 0.3, 5)
		result := detector.DetectGrid(grid)

		require.Len(t, result.Eddies, 1)
		eddy := result.Eddies[0]
		assert.Equal(t, Anticyclonic, eddy.Type)
		assert.False(t, eddy.IsCyclonic())
		assert.InDelta(t, 0.3, eddy.SSHAnomaly, 1e-9, "peak is the bump amplitude")
		assert.InDelta(t, 20.5, eddy.CenterLat, 0.05)
		assert.InDelta(t, 120.5, eddy.CenterLon, 0.05)
		assert.GreaterOrEqual(t, eddy.RadiusKm, DefaultEddyMinRadiusKm)
		assert.LessOrEqual(t, eddy.RadiusKm, DefaultEddyMaxRadiusKm)
		assert.Greater(t, eddy.Intensity, 50.0)
		assert.Equal(t, Clockwise, eddy.Rotation, "warm core in the northern hemisphere")
		assert.Equal(t, 0, result.CyclonicCount())
		assert.Equal(t, 1, result.AnticyclonicCount())
	})

	t.Run("negative anomaly trough is cyclonic", func(t *testing.T) {
		grid := gaussianGrid(21, 21, bounds, -0.3, 5)
		result := detector.DetectGrid(grid)

		require.Len(t, result.Eddies, 1)
		eddy := result.Eddies[0]
		assert.Equal(t, Cyclonic, eddy.Type)
		assert.InDelta(t, -0.3, eddy.SSHAnomaly, 1e-9)
		assert.Equal(t, CounterClockwise, eddy.Rotation, "cold core in the northern hemisphere")
		assert.Equal(t, 1, result.CyclonicCount())
	})

	t.Run("rotation flips in the southern hemisphere", func(t *testing.T) {
		south := BoundingBox{LatMin: -21, LatMax: -20, LonMin: 120, LonMax: 121}
		warm := detector.DetectGrid(gaussianGrid(21, 21, south, 0.3, 5))
		cold := detector.DetectGrid(gaussianGrid(21, 21, south, -0.3, 5))

		require.Len(t, warm.Eddies, 1)
		require.Len(t, cold.Eddies, 1)
		assert.Equal(t, CounterClockwise, warm.Eddies[0].Rotation)
		assert.Equal(t, Clockwise, cold.Eddies[0].Rotation)
	})

	t.Run("blobs outside the mesoscale band rejected", func(t *testing.T) {
		// Same bump over a box a tenth the size: the radius shrinks well
		// below the 50 km minimum.
		tiny := BoundingBox{LatMin: 20, LatMax: 20.1, LonMin: 120, LonMax: 120.1}
		result := detector.DetectGrid(gaussianGrid(21, 21, tiny, 0.3, 5))
		assert.Empty(t, result.Eddies)
	})

	t.Run("components below four cells rejected", func(t *testing.T) {
		grid := makeGrid(11, 11, bounds, func(r, c int) float64 {
			if r == 5 && c >= 4 && c <= 6 {
				return 0.2
			}
			return 0
		})
		result := detector.DetectGrid(grid)
		assert.Empty(t, result.Eddies)
	})

	t.Run("eddies sorted by descending intensity", func(t *testing.T) {
		wide := BoundingBox{LatMin: 18, LatMax: 21, LonMin: 120, LonMax: 121}
		grid := makeGrid(63, 21, wide, func(r, c int) float64 {
			// Strong bump in the south, weaker trough in the north.
			d2s := (float64(r)-10)*(float64(r)-10) + (float64(c)-10)*(float64(c)-10)
			d2n := (float64(r)-52)*(float64(r)-52) + (float64(c)-10)*(float64(c)-10)
			return 0.4*math.Exp(-d2s/50) - 0.15*math.Exp(-d2n/120)
		})
		result := detector.DetectGrid(grid)

		require.Len(t, result.Eddies, 2)
		assert.Equal(t, Anticyclonic, result.Eddies[0].Type)
		assert.Equal(t, Cyclonic, result.Eddies[1].Type)
		assert.Greater(t, result.Eddies[0].Intensity, result.Eddies[1].Intensity)
	})
}

func TestEddyDetector_DetectFromSamples(t *testing.T) {
	detector := NewEddyDetector()

	t.Run("empty input", func(t *testing.T) {
		result := detector.DetectFromSamples(nil)
		assert.Empty(t, result.Eddies)
		assert.False(t, result.DetectionTime.IsZero())
	})

	t.Run("mean sea level subtracted before detection", func(t *testing.T) {
		// Absolute SSH around 1.2 m with a bump on top: the anomaly is
		// relative to the field mean, not to zero.
		var samples []Sample
		for r := 0; r < 41; r++ {
			for c := 0; c < 41; c++ {
				d2 := (float64(r)-20)*(float64(r)-20) + (float64(c)-20)*(float64(c)-20)
				samples = append(samples, Sample{
					Lat:   20 + float64(r)*0.05,
					Lon:   120 + float64(c)*0.05,
					Value: 1.2 + 0.3*math.Exp(-d2/72),
				})
			}
		}
		result := detector.DetectFromSamples(samples)
		require.NotEmpty(t, result.Eddies)
		assert.Equal(t, Anticyclonic, result.Eddies[0].Type)
		assert.Less(t, result.Eddies[0].SSHAnomaly, 0.3, "peak is measured against the mean")
	})
}

func TestEddyScore(t *testing.T) {
	eddy := Eddy{
		Type:      Anticyclonic,
		CenterLat: 25,
		CenterLon: 130,
		RadiusKm:  100,
		Intensity: 100,
		Rotation:  Clockwise,
	}
	// About one radius due north of the center.
	edgeLat := 25 + 100/111.195

	t.Run("no eddies", func(t *testing.T) {
		assert.Equal(t, 0.0, EddyScore(25, 130, nil, PreferEdge))
	})

	t.Run("edge preference peaks at the rim", func(t *testing.T) {
		assert.InDelta(t, 100, EddyScore(edgeLat, 130, []Eddy{eddy}, PreferEdge), 0.5)
	})

	t.Run("edge preference drops toward the center", func(t *testing.T) {
		assert.Equal(t, 0.0, EddyScore(25, 130, []Eddy{eddy}, PreferEdge))
	})

	t.Run("center preference peaks at the centroid", func(t *testing.T) {
		assert.Equal(t, 100.0, EddyScore(25, 130, []Eddy{eddy}, PreferCenter))
	})

	t.Run("center preference fades to zero at the rim", func(t *testing.T) {
		assert.InDelta(t, 0, EddyScore(edgeLat, 130, []Eddy{eddy}, PreferCenter), 1)
	})

	t.Run("cyclonic preference skips warm cores", func(t *testing.T) {
		assert.Equal(t, 0.0, EddyScore(25, 130, []Eddy{eddy}, PreferCyclonic))
	})

	t.Run("anticyclonic preference matches warm cores", func(t *testing.T) {
		assert.Equal(t, 100.0, EddyScore(25, 130, []Eddy{eddy}, PreferAnticyclonic))
	})

	t.Run("intensity scales the score", func(t *testing.T) {
		weak := eddy
		weak.Intensity = 50
		assert.Equal(t, 75.0, EddyScore(25, 130, []Eddy{weak}, PreferCenter))
	})

	t.Run("best eddy wins", func(t *testing.T) {
		far := eddy
		far.CenterLat = 40
		score := EddyScore(25, 130, []Eddy{far, eddy}, PreferCenter)
		assert.Equal(t, 100.0, score)
	})

	t.Run("beyond two radii scores zero for edge preference", func(t *testing.T) {
		assert.Equal(t, 0.0, EddyScore(25+300/111.195, 130, []Eddy{eddy}, PreferEdge))
	})
}
