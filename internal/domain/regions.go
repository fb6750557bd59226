package domain

import (
	"math"
	"slices"
	"sort"
)

// OceanBasin identifies the ocean basin a fishing region belongs to.
type OceanBasin string

const (
	WesternPacific OceanBasin = "WPAC"
	CentralPacific OceanBasin = "CPAC"
	EasternPacific OceanBasin = "EPAC"
	IndianOcean    OceanBasin = "IO"
	Atlantic       OceanBasin = "ATL"
	SouthChinaSea  OceanBasin = "SCS"
)

// SSTRange is a typical sea surface temperature band for a region in °C.
type SSTRange struct {
	Min float64
	Max float64
}

// FishingRegion is a named fishing ground with geographic bounds and
// seasonal characteristics.
type FishingRegion struct {
	ID             string
	NameEN         string
	Basin          OceanBasin
	Bounds         BoundingBox
	PrimarySpecies []string // species catalog IDs
	BestSeasons    []int    // months 1-12; empty means year round
	TypicalSST     SSTRange
	Notes          string
}

// IsInSeason reports whether the month falls in the region's best season.
// Regions without a season list are treated as year-round grounds.
func (r FishingRegion) IsInSeason(month int) bool {
	if len(r.BestSeasons) == 0 {
		return true
	}
	return slices.Contains(r.BestSeasons, month)
}

// AreaKm2 estimates the region's area with a cosine-latitude correction
// for the east-west extent.
func (r FishingRegion) AreaKm2() float64 {
	latCenter := (r.Bounds.LatMin + r.Bounds.LatMax) / 2
	latDist := 111.0 * (r.Bounds.LatMax - r.Bounds.LatMin)
	lonDist := 111.0 * math.Cos(latCenter*math.Pi/180) * (r.Bounds.LonMax - r.Bounds.LonMin)
	return latDist * lonDist
}

// regionTable is the static fishing-ground catalog. Constructed once,
// read-only.
var regionTable = map[string]FishingRegion{
	"taiwan_east": {
		ID: "taiwan_east", NameEN: "Taiwan East Coast", Basin: WesternPacific,
		Bounds:         BoundingBox{LatMin: 22, LatMax: 25.5, LonMin: 121, LonMax: 124},
		PrimarySpecies: []string{"bluefin_tuna", "blue_marlin", "mahi_mahi"},
		BestSeasons:    []int{4, 5, 6, 7, 8, 9},
		TypicalSST:     SSTRange{Min: 24, Max: 29},
		Notes:          "Kuroshio current, longline and harpoon grounds",
	},
	"taiwan_north": {
		ID: "taiwan_north", NameEN: "Taiwan North Coast", Basin: WesternPacific,
		Bounds:         BoundingBox{LatMin: 25, LatMax: 27, LonMin: 120, LonMax: 123},
		PrimarySpecies: []string{"flying_squid"},
		BestSeasons:    []int{9, 10, 11, 12, 1, 2},
		TypicalSST:     SSTRange{Min: 18, Max: 26},
		Notes:          "seasonal migratory schools in autumn and winter",
	},
	"taiwan_south": {
		ID: "taiwan_south", NameEN: "Taiwan South Coast", Basin: SouthChinaSea,
		Bounds:         BoundingBox{LatMin: 20, LatMax: 22.5, LonMin: 118, LonMax: 121},
		PrimarySpecies: []string{"bluefin_tuna", "yellowfin_tuna", "skipjack", "mahi_mahi"},
		BestSeasons:    []int{4, 5, 6, 7},
		TypicalSST:     SSTRange{Min: 25, Max: 30},
		Notes:          "Bashi Channel, bluefin migration path",
	},
	"taiwan_west": {
		ID: "taiwan_west", NameEN: "Taiwan Strait", Basin: SouthChinaSea,
		Bounds:      BoundingBox{LatMin: 22, LatMax: 26, LonMin: 117, LonMax: 120.5},
		BestSeasons: []int{10, 11, 12, 1, 2, 3},
		TypicalSST:  SSTRange{Min: 16, Max: 28},
		Notes:       "shallow grounds suited to trawl and gillnet",
	},
	"wpac_subtropical": {
		ID: "wpac_subtropical", NameEN: "WPAC Subtropical", Basin: WesternPacific,
		Bounds:         BoundingBox{LatMin: 20, LatMax: 35, LonMin: 120, LonMax: 150},
		PrimarySpecies: []string{"albacore", "bigeye_tuna", "yellowfin_tuna", "swordfish"},
		BestSeasons:    []int{3, 4, 5, 9, 10, 11},
		TypicalSST:     SSTRange{Min: 22, Max: 28},
		Notes:          "primary longline grounds",
	},
	"wpac_tropical": {
		ID: "wpac_tropical", NameEN: "WPAC Tropical", Basin: WesternPacific,
		Bounds:         BoundingBox{LatMin: 0, LatMax: 20, LonMin: 120, LonMax: 170},
		PrimarySpecies: []string{"skipjack", "yellowfin_tuna", "bigeye_tuna", "albacore"},
		TypicalSST:     SSTRange{Min: 27, Max: 31},
		Notes:          "year-round purse seine and longline",
	},
	"cpfc_equatorial": {
		ID: "cpfc_equatorial", NameEN: "WCPO Equatorial", Basin: CentralPacific,
		Bounds:         BoundingBox{LatMin: -10, LatMax: 10, LonMin: 140, LonMax: 180},
		PrimarySpecies: []string{"skipjack", "yellowfin_tuna"},
		TypicalSST:     SSTRange{Min: 28, Max: 30},
		Notes:          "among the largest tuna grounds worldwide",
	},
	"io_western": {
		ID: "io_western", NameEN: "Western Indian Ocean", Basin: IndianOcean,
		Bounds:         BoundingBox{LatMin: -20, LatMax: 10, LonMin: 40, LonMax: 80},
		PrimarySpecies: []string{"yellowfin_tuna", "skipjack", "bigeye_tuna", "blue_marlin"},
		BestSeasons:    []int{1, 2, 3, 10, 11, 12},
		TypicalSST:     SSTRange{Min: 25, Max: 30},
		Notes:          "strongly monsoon driven",
	},
}

// RegionByID looks up a fishing region; ok is false for unknown IDs.
func RegionByID(id string) (FishingRegion, bool) {
	r, ok := regionTable[id]
	return r, ok
}

// AllRegions returns every catalog entry sorted by ID.
func AllRegions() []FishingRegion {
	out := make([]FishingRegion, 0, len(regionTable))
	for _, r := range regionTable {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RegionsAt returns the regions containing a point, sorted by ID.
// Regions overlap, so a point may fall in several.
func RegionsAt(lat, lon float64) []FishingRegion {
	var out []FishingRegion
	for _, r := range AllRegions() {
		if r.Bounds.Contains(lat, lon) {
			out = append(out, r)
		}
	}
	return out
}

// RegionsByBasin returns the regions of one ocean basin, sorted by ID.
func RegionsByBasin(basin OceanBasin) []FishingRegion {
	var out []FishingRegion
	for _, r := range AllRegions() {
		if r.Basin == basin {
			out = append(out, r)
		}
	}
	return out
}

// RegionsForSpecies returns the regions listing a species among their
// primary targets, sorted by ID.
func RegionsForSpecies(speciesID string) []FishingRegion {
	var out []FishingRegion
	for _, r := range AllRegions() {
		if slices.Contains(r.PrimarySpecies, speciesID) {
			out = append(out, r)
		}
	}
	return out
}
