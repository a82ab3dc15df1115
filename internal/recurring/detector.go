// Package recurring implements recurring-transaction pattern detection:
// grouping a window of historical transactions by counterparty and
// account, testing each group for periodicity and amount stability,
// classifying the pattern type, scoring confidence, and predicting the
// next occurrence.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/robertromore/budget-sub019/internal/model"
	"github.com/robertromore/budget-sub019/internal/service"
)

// Options configures a detection run. The zero value is usable; every
// field falls back to its documented default.
type Options struct {
	// AccountID restricts detection to one account when non-empty.
	AccountID string
	// PatternTypes restricts results to the given types when non-empty.
	PatternTypes []model.PatternType
	// LookbackMonths bounds the transaction window. Default 6.
	LookbackMonths int
	// MinTransactions is the smallest group worth analyzing. Default 3.
	MinTransactions int
	// MinConfidence is the overall score floor (0..100). Default 50.
	MinConfidence float64
	// MinPredictability is the amount stability floor (0..100). Default 60.
	MinPredictability float64
	// IncludeExisting surfaces groups already covered by a tracked
	// schedule. Default false.
	IncludeExisting bool
}

// Defaults for unset Options fields.
const (
	DefaultLookbackMonths    = 6
	DefaultMinTransactions   = 3
	DefaultMinConfidence     = 50.0
	DefaultMinPredictability = 60.0
)

// consistencyGate is the fixed interval-consistency admission threshold.
// Groups below it are never surfaced regardless of options.
const consistencyGate = 0.75

// Confidence component weights.
const (
	weightInterval   = 0.4
	weightAmount     = 0.3
	weightPattern    = 0.2
	weightOccurrence = 0.1
)

// occurrenceSaturation is the transaction count at which the occurrence
// component of the confidence score saturates. It is not normalized per
// frequency: a weekly pattern saturates in about three months while an
// annual one would need twelve years.
const occurrenceSaturation = 12

// amountMethodThreshold is the amount score above which the
// amount_consistency detection method is recorded.
const amountMethodThreshold = 0.7

// DefaultOptions returns an Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		LookbackMonths:    DefaultLookbackMonths,
		MinTransactions:   DefaultMinTransactions,
		MinConfidence:     DefaultMinConfidence,
		MinPredictability: DefaultMinPredictability,
	}
}

func (o *Options) applyDefaults() {
	if o.LookbackMonths <= 0 {
		o.LookbackMonths = DefaultLookbackMonths
	}
	if o.MinTransactions <= 0 {
		o.MinTransactions = DefaultMinTransactions
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.MinPredictability <= 0 {
		o.MinPredictability = DefaultMinPredictability
	}
}

// Detector runs pattern detection over a transaction source, using a
// schedule source to de-duplicate against already-tracked items.
type Detector struct {
	now          func() time.Time
	transactions service.TransactionSource
	schedules    service.ScheduleSource
	classifier   *Classifier
}

// NewDetector creates a detector with injected collaborators.
func NewDetector(transactions service.TransactionSource, schedules service.ScheduleSource) *Detector {
	return &Detector{
		now:          time.Now,
		transactions: transactions,
		schedules:    schedules,
		classifier:   NewClassifier(),
	}
}

// WithClock overrides the detector's clock. Test hook.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

type groupKey struct {
	counterpartyID string
	accountID      string
}

// group is the per-(counterparty, account) analysis unit, built fresh
// each run and discarded after.
type group struct {
	key          groupKey
	categoryID   *int64
	categoryName string
	transactions []model.Transaction
	amounts      []float64
	dates        []time.Time
}

func (g *group) isExpense() bool {
	negatives := 0
	for _, a := range g.amounts {
		if a < 0 {
			negatives++
		}
	}
	return negatives*2 > len(g.amounts)
}

// Detect queries the lookback window, analyzes each counterparty/account
// group, and returns qualifying patterns ranked by confidence. A window
// with no qualifying groups yields an empty list, never an error; only a
// collaborator fault propagates.
func (d *Detector) Detect(ctx context.Context, opts Options) ([]model.RecurringPattern, error) {
	opts.applyDefaults()

	from := d.now().AddDate(0, -opts.LookbackMonths, 0)
	transactions, err := d.transactions.GetTransactionsSince(ctx, from, opts.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction window: %w", err)
	}

	groups, order := d.groupTransactions(transactions)

	existing, err := d.existingScheduleKeys(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracked schedules: %w", err)
	}

	var patterns []model.RecurringPattern
	for _, key := range order {
		g := groups[key]
		pattern, ok := d.analyzeGroup(g, opts, existing)
		if !ok {
			continue
		}
		patterns = append(patterns, pattern)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].OverallConfidence > patterns[j].OverallConfidence
	})

	slog.Debug("detection run complete",
		"transactions", len(transactions),
		"groups", len(groups),
		"patterns", len(patterns))

	return patterns, nil
}

// groupTransactions buckets transactions by (counterparty, account),
// excluding those without a counterparty. The returned order preserves
// first appearance so runs over the same window are deterministic.
func (d *Detector) groupTransactions(transactions []model.Transaction) (map[groupKey]*group, []groupKey) {
	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, txn := range transactions {
		if txn.CounterpartyID == "" {
			continue
		}

		key := groupKey{counterpartyID: txn.CounterpartyID, accountID: txn.AccountID}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}

		g.transactions = append(g.transactions, txn)
		g.amounts = append(g.amounts, txn.Amount)
		g.dates = append(g.dates, txn.Date)
		if g.categoryID == nil && txn.CategoryID != nil {
			g.categoryID = txn.CategoryID
			g.categoryName = txn.CategoryName
		}
	}

	return groups, order
}

func (d *Detector) existingScheduleKeys(ctx context.Context, opts Options) (map[groupKey]string, error) {
	var accountIDs []string
	if opts.AccountID != "" {
		accountIDs = []string{opts.AccountID}
	}

	keys, err := d.schedules.GetScheduleKeys(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	existing := make(map[groupKey]string, len(keys))
	for _, k := range keys {
		existing[groupKey{counterpartyID: k.CounterpartyID, accountID: k.AccountID}] = k.ScheduleID
	}
	return existing, nil
}

// analyzeGroup runs the three analyzers over one group and assembles a
// RecurringPattern when every admission gate passes.
func (d *Detector) analyzeGroup(g *group, opts Options, existing map[groupKey]string) (model.RecurringPattern, bool) {
	if len(g.transactions) < opts.MinTransactions {
		return model.RecurringPattern{}, false
	}

	intervals := AnalyzeIntervals(g.dates)
	if intervals == nil || intervals.Consistency < consistencyGate {
		return model.RecurringPattern{}, false
	}

	amounts := AnalyzeAmounts(g.amounts)
	if amounts == nil || amounts.Predictability < opts.MinPredictability {
		return model.RecurringPattern{}, false
	}

	first := g.transactions[0]
	classification := d.classifier.Classify(first.CounterpartyName, amounts.Median, "")
	if len(opts.PatternTypes) > 0 && !containsType(opts.PatternTypes, classification.Type) {
		return model.RecurringPattern{}, false
	}

	occurrenceScore := math.Min(1, float64(len(g.transactions))/occurrenceSaturation)
	confidence := 100 * (weightInterval*intervals.Consistency +
		weightAmount*(amounts.Predictability/100) +
		weightPattern*classification.Score +
		weightOccurrence*occurrenceScore)
	if confidence < opts.MinConfidence {
		return model.RecurringPattern{}, false
	}

	scheduleID, tracked := existing[g.key]
	if tracked && !opts.IncludeExisting {
		return model.RecurringPattern{}, false
	}

	return d.buildPattern(g, intervals, amounts, classification, confidence, occurrenceScore, scheduleID), true
}

func (d *Detector) buildPattern(g *group, intervals *model.IntervalStats, amounts *model.AmountStats,
	classification model.Classification, confidence, occurrenceScore float64, scheduleID string) model.RecurringPattern {

	sortedDates := make([]time.Time, len(g.dates))
	copy(sortedDates, g.dates)
	sort.Slice(sortedDates, func(i, j int) bool { return sortedDates[i].Before(sortedDates[j]) })
	firstDate := sortedDates[0]
	lastDate := sortedDates[len(sortedDates)-1]

	var typicalDay *int
	var typicalWeekday *time.Weekday
	if intervals.Frequency.UsesDayOfMonth() {
		if day := DetectTypicalDayOfMonth(sortedDates); day > 0 {
			typicalDay = &day
		}
	}
	if intervals.Frequency.UsesDayOfWeek() {
		if wd, ok := DetectTypicalDayOfWeek(sortedDates); ok {
			typicalWeekday = &wd
		}
	}

	next := PredictNextDate(lastDate, intervals.Frequency, typicalDay, typicalWeekday)
	if next.IsZero() {
		// Irregular cadence: project the observed average gap instead.
		next = lastDate.AddDate(0, 0, int(math.Round(intervals.AverageGapDays)))
	}

	methods := []model.DetectionMethod{model.MethodIntervalAnalysis}
	if amounts.Predictability/100 > amountMethodThreshold {
		methods = append(methods, model.MethodAmountConsistency)
	}
	if classification.Matched {
		methods = append(methods, model.MethodPatternMatching)
	}

	ids := make([]string, len(g.transactions))
	for i, txn := range g.transactions {
		ids[i] = txn.ID
	}

	first := g.transactions[0]
	return model.RecurringPattern{
		CounterpartyID:      g.key.counterpartyID,
		CounterpartyName:    first.CounterpartyName,
		AccountID:           g.key.accountID,
		AccountName:         first.AccountName,
		DisplayName:         SuggestDisplayName(first.CounterpartyName),
		CategoryID:          g.categoryID,
		CategoryName:        g.categoryName,
		Frequency:           intervals.Frequency,
		AverageGapDays:      intervals.AverageGapDays,
		IntervalConsistency: intervals.Consistency,
		TypicalDayOfMonth:   typicalDay,
		TypicalDayOfWeek:    typicalWeekday,
		FirstDate:           firstDate,
		LastDate:            lastDate,
		SuggestedNextDate:   next,
		Amount:              *amounts,
		Classification:      classification,
		Breakdown: model.ConfidenceBreakdown{
			IntervalConsistency:  intervals.Consistency,
			AmountPredictability: amounts.Predictability,
			PatternScore:         classification.Score,
			OccurrenceScore:      occurrenceScore,
		},
		OverallConfidence:  confidence,
		DetectionMethods:   methods,
		TransactionCount:   len(g.transactions),
		TransactionIDs:     ids,
		IsExpense:          g.isExpense(),
		ExistingScheduleID: scheduleID,
	}
}

func containsType(types []model.PatternType, t model.PatternType) bool {
	for _, pt := range types {
		if pt == t {
			return true
		}
	}
	return false
}
