package domain

import (
	"math"
	"sort"
	"time"
)

// Sample is one scattered satellite observation: a scalar value at a point.
type Sample struct {
	Lat   float64   `json:"lat"`
	Lon   float64   `json:"lon"`
	Value float64   `json:"value"`
	Time  time.Time `json:"time,omitempty"`
}

// MeanValue returns the mean of all finite sample values, or 0 if none.
func MeanValue(samples []Sample) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if !isFinite(s.Value) {
			continue
		}
		sum += s.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ScalarGrid is a regular 2-D field over a bounding box. Row 0 is the
// southernmost latitude, column 0 the westernmost longitude; values are
// stored row-major and always satisfy Rows*Cols == len(Values).
type ScalarGrid struct {
	Values []float64
	Rows   int
	Cols   int
	Bounds BoundingBox
}

// IsEmpty reports whether the grid has no cells.
func (g ScalarGrid) IsEmpty() bool { return g.Rows == 0 || g.Cols == 0 }

// At returns the value at (row, col). Callers must stay in bounds.
func (g ScalarGrid) At(row, col int) float64 { return g.Values[row*g.Cols+col] }

// LatStep returns degrees of latitude per row.
func (g ScalarGrid) LatStep() float64 {
	return (g.Bounds.LatMax - g.Bounds.LatMin) / float64(max(1, g.Rows-1))
}

// LonStep returns degrees of longitude per column.
func (g ScalarGrid) LonStep() float64 {
	return (g.Bounds.LonMax - g.Bounds.LonMin) / float64(max(1, g.Cols-1))
}

// CellCoords converts a (row, col) pixel index to geographic coordinates
// by linear mapping over the grid bounds.
func (g ScalarGrid) CellCoords(row, col int) (lat, lon float64) {
	return g.Bounds.LatMin + float64(row)*g.LatStep(),
		g.Bounds.LonMin + float64(col)*g.LonStep()
}

// GridFromSamples interpolates scattered samples onto the regular lattice
// defined by the sorted unique input latitudes and longitudes.
//
// Cells holding one or more samples take their mean. Remaining cells are
// linearly interpolated along each row between the nearest resolved
// neighbors, then along each column. Cells still unresolved (outside the
// data's span) take the fill value, as do non-finite inputs. Zero samples
// yield an explicitly empty grid, not an error.
func GridFromSamples(samples []Sample, fill float64) ScalarGrid {
	if len(samples) == 0 {
		return ScalarGrid{}
	}

	lats := uniqueSorted(samples, func(s Sample) float64 { return s.Lat })
	lons := uniqueSorted(samples, func(s Sample) float64 { return s.Lon })
	rows, cols := len(lats), len(lons)

	sums := make([]float64, rows*cols)
	counts := make([]int, rows*cols)
	latIndex := indexOf(lats)
	lonIndex := indexOf(lons)

	for _, s := range samples {
		v := s.Value
		if !isFinite(v) {
			v = fill
		}
		idx := latIndex[s.Lat]*cols + lonIndex[s.Lon]
		sums[idx] += v
		counts[idx]++
	}

	values := make([]float64, rows*cols)
	for i := range values {
		if counts[i] > 0 {
			values[i] = sums[i] / float64(counts[i])
		} else {
			values[i] = math.NaN()
		}
	}

	interpolateRows(values, rows, cols)
	interpolateCols(values, rows, cols)
	for i, v := range values {
		if !isFinite(v) {
			values[i] = fill
		}
	}

	return ScalarGrid{
		Values: values,
		Rows:   rows,
		Cols:   cols,
		Bounds: BoundingBox{
			LatMin: lats[0], LatMax: lats[rows-1],
			LonMin: lons[0], LonMax: lons[cols-1],
		},
	}
}

// interpolateRows fills NaN runs strictly between resolved cells of each row.
func interpolateRows(values []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		interpolateLine(values, r*cols, 1, cols)
	}
}

// interpolateCols fills NaN runs strictly between resolved cells of each column.
func interpolateCols(values []float64, rows, cols int) {
	for c := 0; c < cols; c++ {
		interpolateLine(values, c, cols, rows)
	}
}

// interpolateLine linearly fills NaN gaps between known values along a
// strided slice view. Leading and trailing NaNs are left untouched.
func interpolateLine(values []float64, offset, stride, n int) {
	prev := -1
	for i := 0; i < n; i++ {
		v := values[offset+i*stride]
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo := values[offset+prev*stride]
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				t := float64(k-prev) / span
				values[offset+k*stride] = lo + t*(v-lo)
			}
		}
		prev = i
	}
}

func uniqueSorted(samples []Sample, key func(Sample) float64) []float64 {
	seen := make(map[float64]struct{}, len(samples))
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}

func indexOf(sorted []float64) map[float64]int {
	m := make(map[float64]int, len(sorted))
	for i, v := range sorted {
		m[v] = i
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
