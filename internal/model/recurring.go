package model

import "time"

// IntervalStats describes how regularly a group of transactions is spaced.
type IntervalStats struct {
	Frequency      Frequency
	AverageGapDays float64
	Consistency    float64 // 0..1, higher means more regular spacing
}

// AmountStats describes how stable a group's amounts are.
type AmountStats struct {
	Mean           float64
	Median         float64
	Min            float64
	Max            float64
	StdDev         float64
	Predictability float64 // 0..100, inverse of relative variability
}

// Classification is the economic type assigned to a recurring item.
type Classification struct {
	Type             PatternType
	SubscriptionType SubscriptionType
	Matched          bool
	Score            float64 // 0..1
}

// ConfidenceBreakdown records the weighted components of the overall score.
type ConfidenceBreakdown struct {
	IntervalConsistency  float64 // 0..1
	AmountPredictability float64 // 0..100
	PatternScore         float64 // 0..1
	OccurrenceScore      float64 // 0..1
}

// PatternStatus reports whether a detected pattern still appears live.
type PatternStatus string

const (
	// StatusActive means the most recent occurrence is within expectation.
	StatusActive PatternStatus = "active"
	// StatusLapsed means the expected occurrence window has passed.
	StatusLapsed PatternStatus = "lapsed"
)

// RecurringPattern is a detected recurring transaction pattern. It is
// constructed once per detection run and never mutated afterward.
type RecurringPattern struct {
	FirstDate           time.Time
	LastDate            time.Time
	SuggestedNextDate   time.Time
	CounterpartyID      string
	CounterpartyName    string
	AccountID           string
	AccountName         string
	CategoryName        string
	DisplayName         string
	ExistingScheduleID  string
	TransactionIDs      []string
	DetectionMethods    []DetectionMethod
	CategoryID          *int64
	TypicalDayOfMonth   *int
	TypicalDayOfWeek    *time.Weekday
	Frequency           Frequency
	AverageGapDays      float64
	IntervalConsistency float64
	Amount              AmountStats
	Classification      Classification
	Breakdown           ConfidenceBreakdown
	OverallConfidence   float64 // 0..100
	TransactionCount    int
	IsExpense           bool
}

// HasMethod reports whether the given detection method contributed.
func (p *RecurringPattern) HasMethod(m DetectionMethod) bool {
	for _, dm := range p.DetectionMethods {
		if dm == m {
			return true
		}
	}
	return false
}

// statusGraceDays is the slack allowed past the suggested next date
// before a pattern is considered lapsed.
const statusGraceDays = 5

// Status reports whether the pattern still appears live as of the given
// date: active until the suggested next occurrence plus a short grace
// period has passed without a new transaction.
func (p *RecurringPattern) Status(asOf time.Time) PatternStatus {
	if p.SuggestedNextDate.IsZero() {
		return StatusActive
	}
	if asOf.After(p.SuggestedNextDate.AddDate(0, 0, statusGraceDays)) {
		return StatusLapsed
	}
	return StatusActive
}
