package model

import "fmt"

// Frequency describes how often a recurring pattern repeats.
type Frequency string

const (
	// FrequencyDaily repeats roughly every day.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly repeats roughly every 7 days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly repeats roughly every 14 days.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly repeats roughly every 30 days.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyQuarterly repeats roughly every 90 days.
	FrequencyQuarterly Frequency = "quarterly"
	// FrequencySemiannual repeats roughly every 182 days.
	FrequencySemiannual Frequency = "semiannual"
	// FrequencyAnnual repeats roughly every 365 days.
	FrequencyAnnual Frequency = "annual"
	// FrequencyIrregular means the gaps match no known cadence.
	FrequencyIrregular Frequency = "irregular"
)

// ParseFrequency converts a string to a Frequency, validating it.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual, FrequencyIrregular:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

// UsesDayOfMonth reports whether a typical day-of-month is meaningful
// for this cadence.
func (f Frequency) UsesDayOfMonth() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual:
		return true
	}
	return false
}

// UsesDayOfWeek reports whether a typical weekday is meaningful for
// this cadence.
func (f Frequency) UsesDayOfWeek() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// PatternType is the coarse economic classification of a recurring item.
type PatternType string

const (
	// PatternTypeSubscription covers streaming, software, memberships and similar.
	PatternTypeSubscription PatternType = "subscription"
	// PatternTypeBill covers utilities, rent, insurance and other obligations.
	PatternTypeBill PatternType = "bill"
	// PatternTypeIncome covers salary, deposits and other inflows.
	PatternTypeIncome PatternType = "income"
	// PatternTypeTransfer covers movements between own accounts.
	PatternTypeTransfer PatternType = "transfer"
	// PatternTypeOther is the fallback when nothing matches.
	PatternTypeOther PatternType = "other"
)

// ParsePatternType converts a string to a PatternType, validating it.
func ParsePatternType(s string) (PatternType, error) {
	switch PatternType(s) {
	case PatternTypeSubscription, PatternTypeBill, PatternTypeIncome,
		PatternTypeTransfer, PatternTypeOther:
		return PatternType(s), nil
	}
	return "", fmt.Errorf("unknown pattern type: %q", s)
}

// SubscriptionType refines subscription patterns into service families.
type SubscriptionType string

const (
	// SubscriptionStreaming covers video streaming services.
	SubscriptionStreaming SubscriptionType = "streaming"
	// SubscriptionMusic covers music and audio services.
	SubscriptionMusic SubscriptionType = "music"
	// SubscriptionSoftware covers software and productivity tools.
	SubscriptionSoftware SubscriptionType = "software"
	// SubscriptionFitness covers gyms and fitness apps.
	SubscriptionFitness SubscriptionType = "fitness"
	// SubscriptionNews covers news and publication subscriptions.
	SubscriptionNews SubscriptionType = "news"
	// SubscriptionGaming covers gaming services.
	SubscriptionGaming SubscriptionType = "gaming"
	// SubscriptionCloud covers cloud storage and hosting.
	SubscriptionCloud SubscriptionType = "cloud"
	// SubscriptionOther covers subscriptions with no recognized family.
	SubscriptionOther SubscriptionType = "other"
)

// DetectionMethod identifies which analyzer contributed to a detection.
type DetectionMethod string

const (
	// MethodIntervalAnalysis is always present on emitted patterns.
	MethodIntervalAnalysis DetectionMethod = "interval_analysis"
	// MethodAmountConsistency is recorded when amounts are highly stable.
	MethodAmountConsistency DetectionMethod = "amount_consistency"
	// MethodPatternMatching is recorded when the counterparty name matched
	// a known keyword table.
	MethodPatternMatching DetectionMethod = "pattern_matching"
)
