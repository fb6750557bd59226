// Package domain implements the potential fishing zone (PFZ) numeric core:
// oceanographic feature detection and the scoring primitives built on it.
// Everything here is pure and stateless; network and storage concerns live
// in the adapters.
//
// # Feature Detection
//
// Scattered satellite samples (sea surface temperature, chlorophyll-a, sea
// surface height) are interpolated onto regular grids by [GridFromSamples].
// The grid lattice is the sorted unique set of input coordinates; row 0 is
// the southernmost latitude and column 0 the westernmost longitude.
//
// Thermal fronts ([FrontDetector]) are connected regions where the SST
// gradient magnitude exceeds a threshold in °C/km. Mesoscale eddies
// ([EddyDetector]) are connected regions of the sea-level anomaly field
// (SSH minus its mean) beyond ±threshold: positive anomalies are
// anticyclonic (warm core), negative cyclonic (cold core). Both detectors
// share one labeling primitive, [LabelComponents], which is 4-connected:
// cells touch through edges only, never diagonals.
//
// # Known Simplifications
//
// Two behaviors are deliberate simplifications that downstream score
// calibration depends on. They are covered by tests and must not be
// "fixed" casually:
//
//   - Eddy pixel area uses a flat 111 km/degree in both axes with no
//     cosine-latitude correction, understating east-west extent away from
//     the equator.
//   - Front length chains coordinates in the row-major order of the
//     labeling pass rather than tracing the region's skeleton, which can
//     misstate the true length of blob-shaped regions.
//
// # Scoring
//
// [FrontScore] and [EddyScore] convert geometric detections into 0-100
// proximity scores for a query point. [OperabilityCalculator] maps weather
// conditions to per-vessel-type workability. Species habitat suitability
// comes from the static species catalog ([SpeciesByID]) or the
// species-agnostic [GenericHabitatScore] curve. The composite predictor in
// internal/predictor weighs these into the final PFZ score.
//
// # Reference Data
//
// The species catalog, fishing-region table, and market-price table are
// read-only maps populated at init. Accessors return copies or sorted
// slices; nothing here mutates after process start.
package domain
