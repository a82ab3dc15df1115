package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertromore/budget-sub019/internal/model"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClassifyGap(t *testing.T) {
	tests := []struct {
		gapDays float64
		want    model.Frequency
	}{
		{1, model.FrequencyDaily},
		{1.4, model.FrequencyDaily},
		{3, model.FrequencyIrregular},
		{7, model.FrequencyWeekly},
		{9.9, model.FrequencyWeekly},
		{10, model.FrequencyBiweekly},
		{14, model.FrequencyBiweekly},
		{17.9, model.FrequencyBiweekly},
		{18, model.FrequencyMonthly},
		{30, model.FrequencyMonthly},
		{44.9, model.FrequencyMonthly},
		{60, model.FrequencyIrregular},
		{91, model.FrequencyQuarterly},
		{130, model.FrequencyIrregular},
		{182, model.FrequencySemiannual},
		{365, model.FrequencyAnnual},
		{500, model.FrequencyIrregular},
		{0.1, model.FrequencyIrregular},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyGap(tt.gapDays), "gap of %.1f days", tt.gapDays)
	}
}

func TestClassifyGapIsExhaustive(t *testing.T) {
	// Every mean gap maps to exactly one bucket: bands must not overlap.
	for i, a := range frequencyBands {
		for j, b := range frequencyBands {
			if i == j {
				continue
			}
			overlap := a.minDays < b.maxDays && b.minDays < a.maxDays
			assert.False(t, overlap, "bands %s and %s overlap", a.frequency, b.frequency)
		}
	}
}

func TestAnalyzeIntervals(t *testing.T) {
	tests := []struct {
		name           string
		dates          []time.Time
		wantNil        bool
		wantFrequency  model.Frequency
		wantAverageGap float64
		minConsistency float64
		maxConsistency float64
	}{
		{
			name:    "fewer than two dates yields no statistics",
			dates:   []time.Time{date(2024, time.March, 1)},
			wantNil: true,
		},
		{
			name: "exact monthly spacing",
			dates: []time.Time{
				date(2024, time.January, 15),
				date(2024, time.February, 15),
				date(2024, time.March, 15),
				date(2024, time.April, 15),
			},
			wantFrequency:  model.FrequencyMonthly,
			wantAverageGap: 30.333333,
			minConsistency: 0.9,
			maxConsistency: 1,
		},
		{
			name: "weekly spacing out of order",
			dates: []time.Time{
				date(2024, time.March, 15),
				date(2024, time.March, 1),
				date(2024, time.March, 8),
			},
			wantFrequency:  model.FrequencyWeekly,
			wantAverageGap: 7,
			minConsistency: 1,
			maxConsistency: 1,
		},
		{
			name: "a skipped occurrence lowers consistency",
			dates: []time.Time{
				date(2024, time.January, 1),
				date(2024, time.February, 1),
				date(2024, time.April, 1), // March missing
				date(2024, time.May, 1),
			},
			wantFrequency:  model.FrequencyMonthly,
			wantAverageGap: 40.333333,
			minConsistency: 0,
			maxConsistency: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := AnalyzeIntervals(tt.dates)

			if tt.wantNil {
				assert.Nil(t, stats)
				return
			}

			require.NotNil(t, stats)
			assert.Equal(t, tt.wantFrequency, stats.Frequency)
			assert.InDelta(t, tt.wantAverageGap, stats.AverageGapDays, 0.01)
			assert.GreaterOrEqual(t, stats.Consistency, tt.minConsistency)
			assert.LessOrEqual(t, stats.Consistency, tt.maxConsistency)
		})
	}
}

func TestDetectTypicalDayOfMonth(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{
			name: "mode of the day",
			dates: []time.Time{
				date(2024, time.January, 15),
				date(2024, time.February, 15),
				date(2024, time.March, 16),
			},
			want: 15,
		},
		{
			name: "last days of different months count as one day",
			dates: []time.Time{
				date(2024, time.January, 31),
				date(2024, time.February, 29),
				date(2024, time.April, 30),
			},
			want: 31,
		},
		{
			name:  "empty input",
			dates: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTypicalDayOfMonth(tt.dates))
		})
	}
}

func TestDetectTypicalDayOfWeek(t *testing.T) {
	wd, ok := DetectTypicalDayOfWeek([]time.Time{
		date(2024, time.March, 1),  // Friday
		date(2024, time.March, 8),  // Friday
		date(2024, time.March, 16), // Saturday
	})
	require.True(t, ok)
	assert.Equal(t, time.Friday, wd)

	_, ok = DetectTypicalDayOfWeek(nil)
	assert.False(t, ok)
}

func TestPredictNextDate(t *testing.T) {
	intPtr := func(i int) *int { return &i }
	wdPtr := func(wd time.Weekday) *time.Weekday { return &wd }

	tests := []struct {
		name      string
		last      time.Time
		frequency model.Frequency
		day       *int
		weekday   *time.Weekday
		want      time.Time
	}{
		{
			name:      "monthly advances one month on the typical day",
			last:      date(2024, time.March, 15),
			frequency: model.FrequencyMonthly,
			day:       intPtr(15),
			want:      date(2024, time.April, 15),
		},
		{
			name:      "typical day 31 clamps to a shorter month",
			last:      date(2024, time.March, 31),
			frequency: model.FrequencyMonthly,
			day:       intPtr(31),
			want:      date(2024, time.April, 30),
		},
		{
			name:      "day 31 from a 30-day month lands on the next month's last day",
			last:      date(2024, time.April, 30),
			frequency: model.FrequencyMonthly,
			day:       intPtr(31),
			want:      date(2024, time.May, 31),
		},
		{
			name:      "january 31 does not normalize into march",
			last:      date(2024, time.January, 31),
			frequency: model.FrequencyMonthly,
			want:      date(2024, time.February, 29),
		},
		{
			name:      "annual from feb 29 anchors to feb 28 in non-leap years",
			last:      date(2024, time.February, 29),
			frequency: model.FrequencyAnnual,
			want:      date(2025, time.February, 28),
		},
		{
			name:      "quarterly wraps the year boundary",
			last:      date(2024, time.November, 5),
			frequency: model.FrequencyQuarterly,
			day:       intPtr(5),
			want:      date(2025, time.February, 5),
		},
		{
			name:      "weekly snaps to the typical weekday",
			last:      date(2024, time.March, 1), // Friday
			frequency: model.FrequencyWeekly,
			weekday:   wdPtr(time.Thursday),
			want:      date(2024, time.March, 7),
		},
		{
			name:      "biweekly without a typical weekday adds 14 days",
			last:      date(2024, time.March, 1),
			frequency: model.FrequencyBiweekly,
			want:      date(2024, time.March, 15),
		},
		{
			name:      "daily adds one day",
			last:      date(2024, time.December, 31),
			frequency: model.FrequencyDaily,
			want:      date(2025, time.January, 1),
		},
		{
			name:      "irregular yields no prediction",
			last:      date(2024, time.March, 1),
			frequency: model.FrequencyIrregular,
			want:      time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictNextDate(tt.last, tt.frequency, tt.day, tt.weekday)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesBillingPattern(t *testing.T) {
	assert.True(t, MatchesBillingPattern(30))
	assert.True(t, MatchesBillingPattern(28))
	assert.True(t, MatchesBillingPattern(91))
	assert.True(t, MatchesBillingPattern(365))
	assert.True(t, MatchesBillingPattern(370))
	assert.False(t, MatchesBillingPattern(7))
	assert.False(t, MatchesBillingPattern(60))
	assert.False(t, MatchesBillingPattern(200))
}
