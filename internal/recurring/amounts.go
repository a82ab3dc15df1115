package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/robertromore/budget-sub019/internal/model"
)

// nearZero guards divisions by medians/means that are effectively zero.
const nearZero = 1e-9

// Default thresholds for the secondary amount operations.
const (
	defaultConsistencyThreshold = 0.25
	defaultPriceChangeThreshold = 0.10
	defaultRangeTolerance       = 0.15
	defaultOutlierStdDevs       = 2.0
	trendDeadbandFraction       = 0.01
)

// AnalyzeAmounts computes descriptive statistics over one group's amounts.
// Returns nil for an empty input.
func AnalyzeAmounts(amounts []float64) *model.AmountStats {
	if len(amounts) == 0 {
		return nil
	}

	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)

	stats := &model.AmountStats{
		Mean:   mean(amounts),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		StdDev: stdDev(amounts),
	}

	cv := 1.0
	if math.Abs(stats.Median) >= nearZero {
		cv = stats.StdDev / math.Abs(stats.Median)
	}
	stats.Predictability = clamp((1-cv)*100, 0, 100)

	return stats
}

// VariationCoefficient returns the standard deviation relative to the
// absolute median. A near-zero median reports maximal variability (1).
func VariationCoefficient(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 1
	}

	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)

	med := median(sorted)
	if math.Abs(med) < nearZero {
		return 1
	}
	return stdDev(amounts) / math.Abs(med)
}

// IsConsistent reports whether the amounts vary less than the threshold.
// A threshold <= 0 uses the default of 0.25.
func IsConsistent(amounts []float64, threshold float64) bool {
	if threshold <= 0 {
		threshold = defaultConsistencyThreshold
	}
	if len(amounts) < 2 {
		return true
	}
	return VariationCoefficient(amounts) <= threshold
}

// TrendDirection describes how a group's amounts move over time.
type TrendDirection string

const (
	// TrendIncreasing means amounts grow over the observed window.
	TrendIncreasing TrendDirection = "increasing"
	// TrendDecreasing means amounts shrink over the observed window.
	TrendDecreasing TrendDirection = "decreasing"
	// TrendStable means the slope is inside the deadband.
	TrendStable TrendDirection = "stable"
)

// Trend reports the direction and magnitude of amount drift over time.
type Trend struct {
	Direction     TrendDirection
	Slope         float64
	PercentChange float64 // first occurrence to last, signed
}

// DetectTrend fits an ordinary least-squares line through the
// chronologically ordered amounts. Slopes smaller than 1% of the mean
// absolute amount are reported as stable.
func DetectTrend(amounts []float64, dates []time.Time) Trend {
	if len(amounts) < 2 || len(amounts) != len(dates) {
		return Trend{Direction: TrendStable}
	}

	ordered := sortByDate(amounts, dates)

	// OLS slope over occurrence index.
	n := float64(len(ordered))
	var sumX, sumY, sumXY, sumXX float64
	for i, a := range ordered {
		x := float64(i)
		sumX += x
		sumY += a
		sumXY += x * a
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom < nearZero {
		return Trend{Direction: TrendStable}
	}
	slope := (n*sumXY - sumX*sumY) / denom

	first, last := ordered[0], ordered[len(ordered)-1]
	var pct float64
	if math.Abs(first) >= nearZero {
		pct = (last - first) / math.Abs(first) * 100
	}

	trend := Trend{Slope: slope, PercentChange: pct, Direction: TrendStable}
	deadband := trendDeadbandFraction * math.Abs(mean(ordered))
	switch {
	case math.Abs(slope) <= deadband:
		trend.Direction = TrendStable
	case slope > 0:
		trend.Direction = TrendIncreasing
	default:
		trend.Direction = TrendDecreasing
	}
	return trend
}

// PriceChange is one detected jump in a group's amount level.
type PriceChange struct {
	Date          time.Time
	OldAmount     float64
	NewAmount     float64
	PercentChange float64
}

// DetectPriceChanges walks the chronologically ordered amounts and records
// each point where the amount jumps by more than the threshold relative to
// the last stable amount. The new amount becomes the baseline for
// subsequent comparisons. A threshold <= 0 uses the default of 0.10.
func DetectPriceChanges(amounts []float64, dates []time.Time, threshold float64) []PriceChange {
	if threshold <= 0 {
		threshold = defaultPriceChangeThreshold
	}
	if len(amounts) < 2 || len(amounts) != len(dates) {
		return nil
	}

	type point struct {
		date   time.Time
		amount float64
	}
	points := make([]point, len(amounts))
	for i := range amounts {
		points[i] = point{date: dates[i], amount: amounts[i]}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })

	var changes []PriceChange
	baseline := points[0].amount
	for _, p := range points[1:] {
		base := math.Abs(baseline)
		if base < nearZero {
			baseline = p.amount
			continue
		}
		diff := math.Abs(p.amount-baseline) / base
		if diff > threshold {
			changes = append(changes, PriceChange{
				Date:          p.date,
				OldAmount:     baseline,
				NewAmount:     p.amount,
				PercentChange: (math.Abs(p.amount) - base) / base * 100,
			})
			baseline = p.amount
		}
	}
	return changes
}

// GroupByAmountRange clusters amounts into sub-groups whose running median
// stays within the tolerance, separating e.g. two subscription tiers that
// share one counterparty. A tolerance <= 0 uses the default of 0.15.
func GroupByAmountRange(amounts []float64, tolerance float64) [][]float64 {
	if tolerance <= 0 {
		tolerance = defaultRangeTolerance
	}
	if len(amounts) == 0 {
		return nil
	}

	var groups [][]float64
	for _, a := range amounts {
		placed := false
		for i, g := range groups {
			sorted := make([]float64, len(g))
			copy(sorted, g)
			sort.Float64s(sorted)
			med := median(sorted)
			if math.Abs(med) < nearZero {
				continue
			}
			if math.Abs(a-med)/math.Abs(med) <= tolerance {
				groups[i] = append(groups[i], a)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []float64{a})
		}
	}
	return groups
}

// IsOutlier reports whether the amount sits more than stdDevs standard
// deviations from the group median. Groups smaller than 3 never flag
// outliers. A stdDevs <= 0 uses the default of 2.
func IsOutlier(amount float64, amounts []float64, stdDevs float64) bool {
	if stdDevs <= 0 {
		stdDevs = defaultOutlierStdDevs
	}
	if len(amounts) < 3 {
		return false
	}

	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)

	sd := stdDev(amounts)
	if sd < nearZero {
		return math.Abs(amount-median(sorted)) >= nearZero
	}
	return math.Abs(amount-median(sorted)) > stdDevs*sd
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdDev returns the sample standard deviation (n-1 denominator).
func stdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sortByDate returns the amounts reordered chronologically.
func sortByDate(amounts []float64, dates []time.Time) []float64 {
	idx := make([]int, len(amounts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return dates[idx[i]].Before(dates[idx[j]]) })

	ordered := make([]float64, len(amounts))
	for i, j := range idx {
		ordered[i] = amounts[j]
	}
	return ordered
}
