package domain

import (
	"fmt"
	"math"
)

const (
	// earthRadiusKm is the mean Earth radius used for great-circle distances.
	earthRadiusKm = 6371.0
	// earthRadiusNM is the mean Earth radius in nautical miles, used for
	// voyage planning in the ROI calculator.
	earthRadiusNM = 3440.065
)

// BoundingBox is a geographic rectangle in WGS-84 coordinates.
// A valid box satisfies lat_min <= lat_max and lon_min <= lon_max within
// the usual [-90,90] / [-180,180] ranges. Construct with NewBoundingBox;
// the zero value is valid but degenerate (a point at 0,0).
type BoundingBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// NewBoundingBox validates and returns a bounding box.
func NewBoundingBox(latMin, latMax, lonMin, lonMax float64) (BoundingBox, error) {
	b := BoundingBox{LatMin: latMin, LatMax: latMax, LonMin: lonMin, LonMax: lonMax}
	if err := b.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// Validate reports whether the box is a well-formed WGS-84 rectangle.
func (b BoundingBox) Validate() error {
	if !(-90 <= b.LatMin && b.LatMin <= b.LatMax && b.LatMax <= 90) {
		return fmt.Errorf("invalid latitudes: %v, %v", b.LatMin, b.LatMax)
	}
	if !(-180 <= b.LonMin && b.LonMin <= b.LonMax && b.LonMax <= 180) {
		return fmt.Errorf("invalid longitudes: %v, %v", b.LonMin, b.LonMax)
	}
	return nil
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.LatMin + b.LatMax) / 2, (b.LonMin + b.LonMax) / 2
}

// Expand grows the box symmetrically by the given number of degrees,
// clamped to valid WGS-84 ranges.
func (b BoundingBox) Expand(degrees float64) BoundingBox {
	return BoundingBox{
		LatMin: math.Max(-90, b.LatMin-degrees),
		LatMax: math.Min(90, b.LatMax+degrees),
		LonMin: math.Max(-180, b.LonMin-degrees),
		LonMax: math.Min(180, b.LonMax+degrees),
	}
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.LatMin <= lat && lat <= b.LatMax && b.LonMin <= lon && lon <= b.LonMax
}

// PointBox returns a box of the given half-width in degrees centered on a
// point, clamped to valid ranges. Used to frame local detection windows.
func PointBox(lat, lon, radiusDeg float64) BoundingBox {
	return BoundingBox{LatMin: lat, LatMax: lat, LonMin: lon, LonMax: lon}.Expand(radiusDeg)
}

// ValidateCoordinates rejects points outside WGS-84 ranges.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %v", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %v", lon)
	}
	return nil
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineRadius(lat1, lon1, lat2, lon2, earthRadiusKm)
}

// HaversineNM returns the great-circle distance in nautical miles.
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineRadius(lat1, lon1, lat2, lon2, earthRadiusNM)
}

func haversineRadius(lat1, lon1, lat2, lon2, radius float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}
