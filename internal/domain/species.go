package domain

import (
	"math"
	"sort"
)

// FishCategory groups species by fishery.
type FishCategory string

const (
	CategoryTuna       FishCategory = "tuna"
	CategoryBillfish   FishCategory = "billfish"
	CategoryPelagic    FishCategory = "pelagic"
	CategoryCoastal    FishCategory = "coastal"
	CategorySquid      FishCategory = "squid"
	CategoryShrimpCrab FishCategory = "shrimp_crab"
)

// MigrationPattern describes a species' movement habit.
type MigrationPattern string

const (
	MigrationResident     MigrationPattern = "resident"
	MigrationSeasonal     MigrationPattern = "seasonal"
	MigrationTransOceanic MigrationPattern = "trans_oceanic"
)

// TemperaturePreference is a piecewise preference curve: full score inside
// the optimal band, linear decay through the tolerance band, zero outside.
type TemperaturePreference struct {
	OptimalMin   float64 // °C
	OptimalMax   float64
	ToleranceMin float64
	ToleranceMax float64
}

// IsOptimal reports whether a temperature is inside the optimal band.
func (t TemperaturePreference) IsOptimal(temp float64) bool {
	return t.OptimalMin <= temp && temp <= t.OptimalMax
}

// IsTolerable reports whether a temperature is survivable for the species.
func (t TemperaturePreference) IsTolerable(temp float64) bool {
	return t.ToleranceMin <= temp && temp <= t.ToleranceMax
}

// PreferenceScore maps a temperature to 0-100 along the preference curve.
func (t TemperaturePreference) PreferenceScore(temp float64) float64 {
	switch {
	case t.IsOptimal(temp):
		return 100
	case !t.IsTolerable(temp):
		return 0
	case temp < t.OptimalMin:
		return 100 * (temp - t.ToleranceMin) / (t.OptimalMin - t.ToleranceMin)
	default:
		return 100 * (t.ToleranceMax - temp) / (t.ToleranceMax - t.OptimalMax)
	}
}

// ChlaRange is a chlorophyll-a concentration band in mg/m³.
type ChlaRange struct {
	Min float64
	Max float64
}

// DepthPreference describes diel vertical habits in meters.
type DepthPreference struct {
	DayMin   float64
	DayMax   float64
	NightMin float64
	NightMax float64
	Notes    string
}

// Species is one target-species definition: environmental preferences,
// seasonality, and applicable gear.
type Species struct {
	ID             string
	NameEN         string
	NameScientific string
	Category       FishCategory
	Temperature    TemperaturePreference
	Depth          *DepthPreference
	ChlaPreference ChlaRange
	Migration      MigrationPattern
	PeakSeasons    []int // months 1-12
	FishingMethods []VesselType
	Notes          string
}

// HabitatScore combines temperature fit (70%) and chlorophyll fit (30%)
// into a 0-100 habitat suitability. A nil chlorophyll reading contributes
// a neutral 50.
func (s Species) HabitatScore(sst float64, chla *float64) float64 {
	tempScore := s.Temperature.PreferenceScore(sst)

	chlaScore := 50.0
	if chla != nil {
		c := *chla
		switch {
		case s.ChlaPreference.Min <= c && c <= s.ChlaPreference.Max:
			chlaScore = 100
		case c < s.ChlaPreference.Min:
			chlaScore = math.Max(0, 100*c/s.ChlaPreference.Min)
		default:
			chlaScore = math.Max(0, 100*(2-c/s.ChlaPreference.Max))
		}
	}

	return 0.7*tempScore + 0.3*chlaScore
}

// speciesTable is the static reference catalog. Constructed once, read-only.
var speciesTable = map[string]Species{
	"bluefin_tuna": {
		ID: "bluefin_tuna", NameEN: "Pacific Bluefin Tuna", NameScientific: "Thunnus orientalis",
		Category:    CategoryTuna,
		Temperature: TemperaturePreference{OptimalMin: 18, OptimalMax: 24, ToleranceMin: 12, ToleranceMax: 28},
		Depth:       &DepthPreference{DayMin: 50, DayMax: 200, NightMin: 0, NightMax: 50, Notes: "diel vertical migration"},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.5}, Migration: MigrationTransOceanic,
		PeakSeasons:    []int{4, 5, 6, 7},
		FishingMethods: []VesselType{Longline, PurseSeine},
		Notes:          "high value, spring migration along the western Pacific",
	},
	"yellowfin_tuna": {
		ID: "yellowfin_tuna", NameEN: "Yellowfin Tuna", NameScientific: "Thunnus albacares",
		Category:    CategoryTuna,
		Temperature: TemperaturePreference{OptimalMin: 24, OptimalMax: 28, ToleranceMin: 18, ToleranceMax: 31},
		Depth:       &DepthPreference{DayMin: 50, DayMax: 250, NightMin: 0, NightMax: 100},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.8}, Migration: MigrationSeasonal,
		PeakSeasons:    allMonths(),
		FishingMethods: []VesselType{Longline, PurseSeine, PoleAndLine},
		Notes:          "available year round in tropical waters",
	},
	"bigeye_tuna": {
		ID: "bigeye_tuna", NameEN: "Bigeye Tuna", NameScientific: "Thunnus obesus",
		Category:    CategoryTuna,
		Temperature: TemperaturePreference{OptimalMin: 17, OptimalMax: 22, ToleranceMin: 10, ToleranceMax: 28},
		Depth:       &DepthPreference{DayMin: 200, DayMax: 500, NightMin: 50, NightMax: 200, Notes: "deep dweller, surfaces at night"},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.5}, Migration: MigrationSeasonal,
		PeakSeasons:    []int{9, 10, 11, 12, 1, 2},
		FishingMethods: []VesselType{Longline},
		Notes:          "prefers cooler subsurface layers",
	},
	"albacore": {
		ID: "albacore", NameEN: "Albacore", NameScientific: "Thunnus alalunga",
		Category:    CategoryTuna,
		Temperature: TemperaturePreference{OptimalMin: 15, OptimalMax: 21, ToleranceMin: 10, ToleranceMax: 25},
		Depth:       &DepthPreference{DayMin: 100, DayMax: 300, NightMin: 0, NightMax: 100},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.6}, Migration: MigrationTransOceanic,
		PeakSeasons:    []int{3, 4, 5, 9, 10, 11},
		FishingMethods: []VesselType{Longline},
		Notes:          "temperate species, aggregates at thermal fronts",
	},
	"skipjack": {
		ID: "skipjack", NameEN: "Skipjack Tuna", NameScientific: "Katsuwonus pelamis",
		Category:    CategoryTuna,
		Temperature: TemperaturePreference{OptimalMin: 26, OptimalMax: 30, ToleranceMin: 20, ToleranceMax: 32},
		Depth:       &DepthPreference{DayMin: 0, DayMax: 100, NightMin: 0, NightMax: 50},
		ChlaPreference: ChlaRange{Min: 0.2, Max: 1.0}, Migration: MigrationSeasonal,
		PeakSeasons:    allMonths(),
		FishingMethods: []VesselType{PurseSeine, PoleAndLine},
		Notes:          "surface schooling, suits purse seine",
	},
	"blue_marlin": {
		ID: "blue_marlin", NameEN: "Blue Marlin", NameScientific: "Makaira nigricans",
		Category:    CategoryBillfish,
		Temperature: TemperaturePreference{OptimalMin: 24, OptimalMax: 29, ToleranceMin: 20, ToleranceMax: 31},
		Depth:       &DepthPreference{DayMin: 0, DayMax: 200, NightMin: 0, NightMax: 100},
		ChlaPreference: ChlaRange{Min: 0.05, Max: 0.3}, Migration: MigrationSeasonal,
		PeakSeasons:    []int{7, 8, 9, 10},
		FishingMethods: []VesselType{Longline},
	},
	"swordfish": {
		ID: "swordfish", NameEN: "Swordfish", NameScientific: "Xiphias gladius",
		Category:    CategoryBillfish,
		Temperature: TemperaturePreference{OptimalMin: 18, OptimalMax: 22, ToleranceMin: 10, ToleranceMax: 28},
		Depth:       &DepthPreference{DayMin: 200, DayMax: 600, NightMin: 0, NightMax: 100, Notes: "surfaces at night to feed"},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.5}, Migration: MigrationSeasonal,
		PeakSeasons:    []int{10, 11, 12, 1, 2, 3},
		FishingMethods: []VesselType{Longline},
		Notes:          "most active autumn through winter",
	},
	"mahi_mahi": {
		ID: "mahi_mahi", NameEN: "Mahi-mahi", NameScientific: "Coryphaena hippurus",
		Category:    CategoryPelagic,
		Temperature: TemperaturePreference{OptimalMin: 25, OptimalMax: 29, ToleranceMin: 21, ToleranceMax: 31},
		Depth:       &DepthPreference{DayMin: 0, DayMax: 50, NightMin: 0, NightMax: 30},
		ChlaPreference: ChlaRange{Min: 0.1, Max: 0.8}, Migration: MigrationSeasonal,
		PeakSeasons:    []int{4, 5, 6, 7, 8, 9},
		FishingMethods: []VesselType{Longline, PoleAndLine},
		Notes:          "gathers beneath floating objects",
	},
	"flying_squid": {
		ID: "flying_squid", NameEN: "Japanese Flying Squid", NameScientific: "Todarodes pacificus",
		Category:    CategorySquid,
		Temperature: TemperaturePreference{OptimalMin: 15, OptimalMax: 20, ToleranceMin: 10, ToleranceMax: 25},
		Depth:       &DepthPreference{DayMin: 100, DayMax: 300, NightMin: 0, NightMax: 50, Notes: "rises to light at night"},
		ChlaPreference: ChlaRange{Min: 0.3, Max: 1.5}, Migration: MigrationSeasonal,
		PeakSeasons:    []int{6, 7, 8, 9, 10},
		FishingMethods: []VesselType{SquidJigging},
		Notes:          "taken under fishing lights",
	},
}

func allMonths() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}

// SpeciesByID looks up a species definition; ok is false for unknown IDs.
func SpeciesByID(id string) (Species, bool) {
	s, ok := speciesTable[id]
	return s, ok
}

// AllSpecies returns every catalog entry sorted by ID.
func AllSpecies() []Species {
	out := make([]Species, 0, len(speciesTable))
	for _, s := range speciesTable {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SpeciesByCategory returns catalog entries of one category, sorted by ID.
func SpeciesByCategory(category FishCategory) []Species {
	var out []Species
	for _, s := range AllSpecies() {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// SpeciesScore pairs a species with its habitat score for ranking.
type SpeciesScore struct {
	Species Species
	Score   float64
}

// SpeciesForTemperature ranks species whose habitat score at the given SST
// meets minScore, best first. Ties keep ID order.
func SpeciesForTemperature(sst float64, minScore float64) []SpeciesScore {
	var out []SpeciesScore
	for _, s := range AllSpecies() {
		if score := s.HabitatScore(sst, nil); score >= minScore {
			out = append(out, SpeciesScore{Species: s, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// GenericHabitatScore is the species-agnostic fallback habitat curve: SST
// 24-28°C scores full marks tapering outside, chlorophyll 0.2-1.0 mg/m³
// is optimal. Weighted 70/30 like the species curves. The SST term
// replaces a neutral base of 50 when present; the chlorophyll term is
// added only when present.
func GenericHabitatScore(sst, chla *float64) float64 {
	score := 50.0

	if sst != nil {
		t := *sst
		var sstScore float64
		switch {
		case 24 <= t && t <= 28:
			sstScore = 100
		case 20 <= t && t < 24:
			sstScore = 50 + (t-20)*12.5
		case 28 < t && t <= 32:
			sstScore = 100 - (t-28)*12.5
		default:
			sstScore = math.Max(0, 50-math.Abs(t-26)*5)
		}
		score = sstScore * 0.7
	}

	if chla != nil {
		c := *chla
		var chlaScore float64
		switch {
		case 0.2 <= c && c <= 1.0:
			chlaScore = 100
		case c < 0.2:
			chlaScore = c / 0.2 * 80
		default:
			chlaScore = math.Max(0, 100-(c-1.0)*20)
		}
		score += chlaScore * 0.3
	}

	return score
}
