package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/robertromore/budget-sub019/internal/model"
)

// frequencyBand maps a mean gap range (in days) to a frequency bucket.
// Bands do not overlap; mean gaps outside every band are irregular.
type frequencyBand struct {
	frequency model.Frequency
	minDays   float64
	maxDays   float64
}

// Band boundaries are calibrated so common billing cadences land in a
// single bucket: a 4-week cycle (28d) is monthly, a 13-week cycle (91d)
// is quarterly. Gaps of 1.5-5 days fit no real-world cadence and fall
// through to irregular.
var frequencyBands = []frequencyBand{
	{model.FrequencyDaily, 0.5, 1.5},
	{model.FrequencyWeekly, 5, 10},
	{model.FrequencyBiweekly, 10, 18},
	{model.FrequencyMonthly, 18, 45},
	{model.FrequencyQuarterly, 75, 105},
	{model.FrequencySemiannual, 160, 200},
	{model.FrequencyAnnual, 330, 400},
}

// classifyGap maps a mean gap in days to exactly one frequency bucket.
func classifyGap(meanGapDays float64) model.Frequency {
	for _, band := range frequencyBands {
		if meanGapDays >= band.minDays && meanGapDays < band.maxDays {
			return band.frequency
		}
	}
	return model.FrequencyIrregular
}

// AnalyzeIntervals computes gap statistics over one group's dates and
// classifies the cadence. Returns nil for fewer than 2 dates.
func AnalyzeIntervals(dates []time.Time) *model.IntervalStats {
	if len(dates) < 2 {
		return nil
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, daysBetween(sorted[i-1], sorted[i]))
	}

	avg := mean(gaps)
	cv := 1.0
	if avg >= nearZero {
		cv = stdDev(gaps) / avg
	}

	return &model.IntervalStats{
		Frequency:      classifyGap(avg),
		AverageGapDays: avg,
		Consistency:    clamp(1-cv, 0, 1),
	}
}

// lastDayMarker stands in for "last day of the month" when tallying
// day-of-month modes, so Jan 31, Feb 28 and Apr 30 count as the same day.
const lastDayMarker = 32

// DetectTypicalDayOfMonth returns the most common day-of-month across the
// dates. Dates falling on the last day of their month are treated as
// equivalent regardless of month length; the marker resolves to 31 so
// prediction clamps it per target month. Returns 0 for an empty input.
func DetectTypicalDayOfMonth(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	counts := make(map[int]int)
	for _, d := range dates {
		day := d.Day()
		if day == lastDayOfMonth(d.Year(), d.Month()) && day >= 28 {
			day = lastDayMarker
		}
		counts[day]++
	}

	best, bestCount := 0, 0
	for day, count := range counts {
		if count > bestCount || (count == bestCount && day < best) {
			best, bestCount = day, count
		}
	}
	if best == lastDayMarker {
		return 31
	}
	return best
}

// DetectTypicalDayOfWeek returns the most common weekday across the dates.
// The second return value is false for an empty input.
func DetectTypicalDayOfWeek(dates []time.Time) (time.Weekday, bool) {
	if len(dates) == 0 {
		return time.Sunday, false
	}

	counts := make(map[time.Weekday]int)
	for _, d := range dates {
		counts[d.Weekday()]++
	}

	best, bestCount := time.Sunday, 0
	for wd, count := range counts {
		if count > bestCount || (count == bestCount && wd < best) {
			best, bestCount = wd, count
		}
	}
	return best, true
}

// PredictNextDate adds one frequency unit to lastDate and snaps the result
// to the typical day when one is provided. Day-of-month values that do not
// exist in the target month clamp to its last day (day 31 in a 30-day
// month, Feb 29 anchors in non-leap years). Irregular cadences yield the
// zero time; callers fall back to the observed average gap.
func PredictNextDate(lastDate time.Time, frequency model.Frequency, typicalDayOfMonth *int, typicalDayOfWeek *time.Weekday) time.Time {
	switch frequency {
	case model.FrequencyDaily:
		return lastDate.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		return snapToWeekday(lastDate.AddDate(0, 0, 7), lastDate, typicalDayOfWeek)
	case model.FrequencyBiweekly:
		return snapToWeekday(lastDate.AddDate(0, 0, 14), lastDate, typicalDayOfWeek)
	case model.FrequencyMonthly:
		return addMonthsSnapped(lastDate, 1, typicalDayOfMonth)
	case model.FrequencyQuarterly:
		return addMonthsSnapped(lastDate, 3, typicalDayOfMonth)
	case model.FrequencySemiannual:
		return addMonthsSnapped(lastDate, 6, typicalDayOfMonth)
	case model.FrequencyAnnual:
		return addMonthsSnapped(lastDate, 12, typicalDayOfMonth)
	}
	return time.Time{}
}

// billingCycleTolerance is the relative slack when matching an observed
// gap against a known billing-cycle length.
const billingCycleTolerance = 0.10

// MatchesBillingPattern reports whether the observed gap matches a known
// billing-cycle length (monthly, quarterly or annual) within tolerance.
func MatchesBillingPattern(gapDays float64) bool {
	for _, cycle := range []float64{30, 91, 365} {
		if math.Abs(gapDays-cycle) <= cycle*billingCycleTolerance {
			return true
		}
	}
	return false
}

// addMonthsSnapped advances by whole months without time.AddDate's day
// normalization (Jan 31 + 1 month must not land in March), then applies
// the typical day clamped to the target month.
func addMonthsSnapped(lastDate time.Time, months int, typicalDay *int) time.Time {
	year, month := lastDate.Year(), int(lastDate.Month())+months
	for month > 12 {
		month -= 12
		year++
	}

	day := lastDate.Day()
	if typicalDay != nil && *typicalDay >= 1 {
		day = *typicalDay
	}
	if last := lastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, lastDate.Location())
}

// snapToWeekday moves the candidate to the nearest occurrence of the
// typical weekday, keeping the result strictly after lastDate.
func snapToWeekday(candidate, lastDate time.Time, typical *time.Weekday) time.Time {
	if typical == nil {
		return candidate
	}

	delta := (int(*typical) - int(candidate.Weekday()) + 7) % 7
	if delta > 3 {
		delta -= 7
	}
	snapped := candidate.AddDate(0, 0, delta)
	if !snapped.After(lastDate) {
		snapped = snapped.AddDate(0, 0, 7)
	}
	return snapped
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
