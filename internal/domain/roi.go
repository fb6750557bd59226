package domain

import (
	"fmt"
	"math"
)

// VesselSpecs describes a vessel for cost modeling.
type VesselSpecs struct {
	Name                string
	LengthM             float64
	TonnageGT           float64
	EngineHP            float64
	FuelLPerNM          float64 // liters of fuel per nautical mile
	CrewSize            int
	OperatingCostPerDay float64 // USD
}

// DefaultLonglineVessel returns the reference longline vessel profile.
func DefaultLonglineVessel() VesselSpecs {
	return VesselSpecs{
		Name:                "standard longline vessel",
		LengthM:             45,
		TonnageGT:           200,
		EngineHP:            800,
		FuelLPerNM:          2.5,
		CrewSize:            12,
		OperatingCostPerDay: 500,
	}
}

// DefaultPurseSeineVessel returns the reference purse seine vessel profile.
func DefaultPurseSeineVessel() VesselSpecs {
	return VesselSpecs{
		Name:                "standard purse seine vessel",
		LengthM:             60,
		TonnageGT:           500,
		EngineHP:            2000,
		FuelLPerNM:          5.0,
		CrewSize:            25,
		OperatingCostPerDay: 1500,
	}
}

// MarketPrice holds the USD/kg price band for one species.
type MarketPrice struct {
	Low  float64
	Avg  float64
	High float64
}

// marketPrices is the static species price table (USD/kg).
var marketPrices = map[string]MarketPrice{
	"bluefin_tuna":   {Low: 20, Avg: 40, High: 80},
	"yellowfin_tuna": {Low: 6, Avg: 10, High: 15},
	"bigeye_tuna":    {Low: 8, Avg: 12, High: 18},
	"skipjack":       {Low: 1.5, Avg: 2.5, High: 4},
	"albacore":       {Low: 4, Avg: 6, High: 9},
	"swordfish":      {Low: 8, Avg: 12, High: 18},
	"mahi_mahi":      {Low: 5, Avg: 8, High: 12},
}

// defaultPriceAvg applies to species without a price entry.
const defaultPriceAvg = 5.0

// MarketPriceFor returns the price band for a species, with a generic
// fallback for unlisted species.
func MarketPriceFor(speciesID string) MarketPrice {
	if p, ok := marketPrices[speciesID]; ok {
		return p
	}
	return MarketPrice{Low: defaultPriceAvg, Avg: defaultPriceAvg, High: defaultPriceAvg}
}

// baseCPUE is the species baseline catch per vessel-day in kg.
var baseCPUE = map[string]float64{
	"bluefin_tuna":   30,
	"yellowfin_tuna": 80,
	"bigeye_tuna":    50,
	"skipjack":       500,
	"albacore":       100,
	"swordfish":      40,
	"mahi_mahi":      60,
}

const defaultCPUE = 50.0

// FuelCost itemizes the fuel spend for a voyage.
type FuelCost struct {
	DistanceNM  float64 `json:"distance_nm"`
	FuelLiters  float64 `json:"fuel_consumption_l"`
	FuelCostUSD float64 `json:"fuel_cost_usd"`
	PricePerL   float64 `json:"fuel_price_per_l"`
}

// ExpectedCatch estimates the value of one species' catch for a trip.
type ExpectedCatch struct {
	SpeciesID      string  `json:"species"`
	EstimatedKg    float64 `json:"estimated_kg"`
	PricePerKg     float64 `json:"price_per_kg"`
	EstimatedValue float64 `json:"estimated_value"`
	Confidence     float64 `json:"confidence"` // 0-1
}

// ROIResult is the economic assessment of a planned trip.
type ROIResult struct {
	ExpectedRevenue  float64         `json:"expected_revenue"`
	TotalCost        float64         `json:"total_cost"`
	NetProfit        float64         `json:"net_profit"`
	ROIPercentage    float64         `json:"roi_percentage"`
	BreakEvenCatchKg float64         `json:"break_even_catch_kg"`
	FuelCost         FuelCost        `json:"fuel_cost"`
	ExpectedCatches  []ExpectedCatch `json:"expected_catches"`
	Recommendation   string          `json:"recommendation"`
}

// IsProfitable reports whether the trip is expected to net a profit.
func (r ROIResult) IsProfitable() bool { return r.NetProfit > 0 }

// ROICalculator estimates trip economics from distance, vessel costs, and
// a PFZ-score-scaled catch expectation.
type ROICalculator struct {
	vessel    VesselSpecs
	fuelPrice float64 // USD per liter
}

// NewROICalculator creates a calculator. Zero-value specs select the
// default longline vessel; a non-positive fuel price takes the 0.8 USD/L
// default.
func NewROICalculator(vessel VesselSpecs, fuelPriceUSDPerL float64) *ROICalculator {
	if vessel == (VesselSpecs{}) {
		vessel = DefaultLonglineVessel()
	}
	if fuelPriceUSDPerL <= 0 {
		fuelPriceUSDPerL = 0.8
	}
	return &ROICalculator{vessel: vessel, fuelPrice: fuelPriceUSDPerL}
}

// Calculate evaluates a round trip from origin to the target ground.
// The catch estimate scales the species baseline CPUE by the PFZ score
// (factor 0.5 at score 0 up to 1.5 at score 100); the original model also
// applied a random variability factor, dropped here so results stay
// deterministic.
func (c *ROICalculator) Calculate(origin, destination GeoPoint, pfzScore float64, speciesID string, operationDays int) ROIResult {
	distanceNM := HaversineNM(origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	fuel := c.fuelCost(distanceNM * 2) // round trip

	operatingCost := c.vessel.OperatingCostPerDay * float64(operationDays)
	totalCost := fuel.FuelCostUSD + operatingCost

	catch := c.estimateCatch(pfzScore, speciesID, operationDays)
	expectedRevenue := catch.EstimatedValue

	netProfit := expectedRevenue - totalCost
	roiPct := 0.0
	if totalCost > 0 {
		roiPct = netProfit / totalCost * 100
	}

	avgPrice := MarketPriceFor(speciesID).Avg
	breakEven := math.Inf(1)
	if avgPrice > 0 {
		breakEven = totalCost / avgPrice
	}

	return ROIResult{
		ExpectedRevenue:  round2(expectedRevenue),
		TotalCost:        round2(totalCost),
		NetProfit:        round2(netProfit),
		ROIPercentage:    round1(roiPct),
		BreakEvenCatchKg: round1(breakEven),
		FuelCost:         fuel,
		ExpectedCatches:  []ExpectedCatch{catch},
		Recommendation:   roiRecommendation(roiPct, pfzScore, distanceNM),
	}
}

func (c *ROICalculator) fuelCost(distanceNM float64) FuelCost {
	liters := distanceNM * c.vessel.FuelLPerNM
	return FuelCost{
		DistanceNM:  round1(distanceNM),
		FuelLiters:  round1(liters),
		FuelCostUSD: round2(liters * c.fuelPrice),
		PricePerL:   c.fuelPrice,
	}
}

func (c *ROICalculator) estimateCatch(pfzScore float64, speciesID string, operationDays int) ExpectedCatch {
	cpue, ok := baseCPUE[speciesID]
	if !ok {
		cpue = defaultCPUE
	}

	pfzFactor := 0.5 + pfzScore/100 // 0.5 at score 0, 1.5 at 100
	estimatedKg := cpue * float64(operationDays) * pfzFactor

	price := MarketPriceFor(speciesID).Avg
	confidence := math.Min(0.9, 0.3+pfzScore/150)

	return ExpectedCatch{
		SpeciesID:      speciesID,
		EstimatedKg:    round1(estimatedKg),
		PricePerKg:     price,
		EstimatedValue: round2(estimatedKg * price),
		Confidence:     round2(confidence),
	}
}

func roiRecommendation(roiPct, pfzScore, distanceNM float64) string {
	var rec string
	switch {
	case roiPct >= 100:
		rec = "Excellent return expected, strongly recommend sailing."
	case roiPct >= 50:
		rec = "Good investment with a reasonable expected return."
	case roiPct >= 20:
		rec = "Moderate return. Weigh the risk before committing."
	case roiPct >= 0:
		rec = "Marginal trip, likely near break-even."
	default:
		rec = "Expected loss. Consider other grounds."
	}

	if distanceNM > 500 {
		rec += " Long transit, mind the fuel reserve."
	}
	if pfzScore < 50 {
		rec += fmt.Sprintf(" PFZ score is low (%.0f), fishing may be poor.", pfzScore)
	}
	return rec
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
