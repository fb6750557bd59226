package domain

import (
	"fmt"
	"math"
	"strings"
)

// PredictionRecord is one historical PFZ prediction for validation.
type PredictionRecord struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	PFZScore float64 `json:"pfz_score"`
}

// CatchRecord is one observed fishing outcome for validation.
type CatchRecord struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	CatchKg float64 `json:"catch_kg"`
	CPUE    float64 `json:"cpue"` // catch per unit effort
}

// ClassThresholds split a continuous value into low/medium/high classes.
type ClassThresholds struct {
	High   float64
	Medium float64
}

// Default classification thresholds: PFZ scores (0-100) and daily catch (kg).
var (
	DefaultPFZThresholds   = ClassThresholds{High: 70, Medium: 50}
	DefaultCatchThresholds = ClassThresholds{High: 100, Medium: 30}
)

func (t ClassThresholds) classify(v float64) string {
	switch {
	case v >= t.High:
		return "high"
	case v >= t.Medium:
		return "medium"
	default:
		return "low"
	}
}

// AccuracyMetrics quantifies how well historical predictions matched
// fishing outcomes.
type AccuracyMetrics struct {
	HitRate                float64                   `json:"hit_rate"`                // of high predictions, fraction with high catch
	CPUECorrelation        float64                   `json:"cpue_correlation"`        // Pearson r, PFZ score vs CPUE
	SpatialErrorKm         float64                   `json:"spatial_error_km"`        // mean prediction-to-catch distance
	ClassificationAccuracy float64                   `json:"classification_accuracy"` // exact class agreement
	Precision              float64                   `json:"precision"`
	Recall                 float64                   `json:"recall"`
	F1Score                float64                   `json:"f1_score"`
	ConfusionMatrix        map[string]map[string]int `json:"confusion_matrix"` // predicted class -> actual class -> count
	SampleSize             int                       `json:"sample_size"`
}

// Summary renders a human-readable validation report.
func (m AccuracyMetrics) Summary() string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)
	sub := strings.Repeat("-", 50)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "PFZ accuracy report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "samples: %d\n", m.SampleSize)
	fmt.Fprintln(&b, sub)
	fmt.Fprintf(&b, "hit rate: %.1f%%\n", m.HitRate*100)
	fmt.Fprintf(&b, "CPUE correlation: %.3f\n", m.CPUECorrelation)
	fmt.Fprintf(&b, "mean spatial error: %.1f km\n", m.SpatialErrorKm)
	fmt.Fprintf(&b, "classification accuracy: %.1f%%\n", m.ClassificationAccuracy*100)
	fmt.Fprintln(&b, sub)
	fmt.Fprintf(&b, "precision: %.1f%%\n", m.Precision*100)
	fmt.Fprintf(&b, "recall: %.1f%%\n", m.Recall*100)
	fmt.Fprintf(&b, "F1: %.3f\n", m.F1Score)
	fmt.Fprint(&b, rule)
	return b.String()
}

// MetricsCalculator scores predictions against observed catches.
type MetricsCalculator struct {
	PFZThresholds   ClassThresholds
	CatchThresholds ClassThresholds
}

// NewMetricsCalculator returns a calculator with the default class
// thresholds.
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{
		PFZThresholds:   DefaultPFZThresholds,
		CatchThresholds: DefaultCatchThresholds,
	}
}

// Calculate pairs predictions with actuals by index, truncating to the
// shorter list, and computes the full metric set. Zero pairs yields zeroed
// metrics rather than an error.
func (c *MetricsCalculator) Calculate(predictions []PredictionRecord, actuals []CatchRecord) AccuracyMetrics {
	n := min(len(predictions), len(actuals))
	if n == 0 {
		return AccuracyMetrics{ConfusionMatrix: emptyConfusion()}
	}
	predictions = predictions[:n]
	actuals = actuals[:n]

	predClasses := make([]string, n)
	catchClasses := make([]string, n)
	for i := 0; i < n; i++ {
		predClasses[i] = c.PFZThresholds.classify(predictions[i].PFZScore)
		catchClasses[i] = c.CatchThresholds.classify(actuals[i].CatchKg)
	}

	scores := make([]float64, n)
	cpues := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = predictions[i].PFZScore
		cpues[i] = actuals[i].CPUE
	}

	precision, recall, f1 := precisionRecallF1(predClasses, catchClasses)

	return AccuracyMetrics{
		HitRate:                hitRate(predClasses, catchClasses),
		CPUECorrelation:        pearson(scores, cpues),
		SpatialErrorKm:         meanSpatialErrorKm(predictions, actuals),
		ClassificationAccuracy: classAgreement(predClasses, catchClasses),
		Precision:              precision,
		Recall:                 recall,
		F1Score:                f1,
		ConfusionMatrix:        confusionMatrix(predClasses, catchClasses),
		SampleSize:             n,
	}
}

// hitRate is the fraction of "high" predictions whose catch was also
// "high". No high predictions yields 0.
func hitRate(pred, actual []string) float64 {
	var highs, hits int
	for i := range pred {
		if pred[i] != "high" {
			continue
		}
		highs++
		if actual[i] == "high" {
			hits++
		}
	}
	if highs == 0 {
		return 0
	}
	return float64(hits) / float64(highs)
}

// pearson computes the Pearson correlation coefficient over pairs where
// both values are finite. Fewer than 3 valid pairs, or a degenerate
// (zero-variance) series, yields 0.
func pearson(xs, ys []float64) float64 {
	var sx, sy float64
	var n int
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		sx += xs[i]
		sy += ys[i]
		n++
	}
	if n < 3 {
		return 0
	}
	mx, my := sx/float64(n), sy/float64(n)

	var cov, vx, vy float64
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func meanSpatialErrorKm(predictions []PredictionRecord, actuals []CatchRecord) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var total float64
	for i := range predictions {
		total += Haversine(predictions[i].Lat, predictions[i].Lon, actuals[i].Lat, actuals[i].Lon)
	}
	return total / float64(len(predictions))
}

func classAgreement(pred, actual []string) float64 {
	var agree int
	for i := range pred {
		if pred[i] == actual[i] {
			agree++
		}
	}
	return float64(agree) / float64(len(pred))
}

// precisionRecallF1 treats "high" as the positive class.
func precisionRecallF1(pred, actual []string) (precision, recall, f1 float64) {
	var tp, fp, fn int
	for i := range pred {
		switch {
		case pred[i] == "high" && actual[i] == "high":
			tp++
		case pred[i] == "high":
			fp++
		case actual[i] == "high":
			fn++
		}
	}
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

func confusionMatrix(pred, actual []string) map[string]map[string]int {
	m := emptyConfusion()
	for i := range pred {
		m[pred[i]][actual[i]]++
	}
	return m
}

func emptyConfusion() map[string]map[string]int {
	m := make(map[string]map[string]int, 3)
	for _, class := range []string{"high", "medium", "low"} {
		m[class] = make(map[string]int, 3)
	}
	return m
}
