package recurring

import (
	"regexp"
	"strings"

	"github.com/robertromore/budget-sub019/internal/model"
)

// amountRange is the typical absolute amount window for a known entry.
type amountRange struct {
	min float64
	max float64
}

// classifierEntry is one row of a keyword/regex table. Keywords match as
// substrings of the normalized name; regex entries are pre-compiled.
type classifierEntry struct {
	amounts          *amountRange
	keyword          string
	pattern          string
	subscriptionType model.SubscriptionType
	isRegex          bool
}

// Classifier matches counterparty names against ordered keyword tables to
// classify the economic type of a recurring item. Tables are checked in
// order (subscriptions, bills, income, transfers); the first match wins
// and anything unmatched falls back to "other".
type Classifier struct {
	compiled map[string]*regexp.Regexp
	tables   []classifierTable
	mccTypes map[string]model.PatternType
}

type classifierTable struct {
	patternType model.PatternType
	entries     []classifierEntry
}

// NewClassifier creates a classifier with the built-in pattern tables.
func NewClassifier() *Classifier {
	c := &Classifier{
		compiled: make(map[string]*regexp.Regexp),
		tables: []classifierTable{
			{model.PatternTypeSubscription, subscriptionEntries},
			{model.PatternTypeBill, billEntries},
			{model.PatternTypeIncome, incomeEntries},
			{model.PatternTypeTransfer, transferEntries},
		},
		mccTypes: merchantCodeTypes,
	}

	for _, table := range c.tables {
		for _, e := range table.entries {
			if e.isRegex && e.pattern != "" {
				if re, err := regexp.Compile(e.pattern); err == nil {
					c.compiled[e.pattern] = re
				}
			}
		}
	}

	return c
}

var subscriptionEntries = []classifierEntry{
	{keyword: "netflix", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{6, 30}},
	{keyword: "hulu", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{7, 25}},
	{keyword: "disney", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{7, 25}},
	{keyword: "hbo", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{9, 25}},
	{keyword: "paramount", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{5, 15}},
	{keyword: "peacock", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{5, 15}},
	{keyword: "spotify", subscriptionType: model.SubscriptionMusic, amounts: &amountRange{5, 20}},
	{keyword: "pandora", subscriptionType: model.SubscriptionMusic, amounts: &amountRange{5, 15}},
	{keyword: "tidal", subscriptionType: model.SubscriptionMusic, amounts: &amountRange{5, 25}},
	{keyword: "audible", subscriptionType: model.SubscriptionMusic, amounts: &amountRange{8, 25}},
	{keyword: "apple.com/bill", subscriptionType: model.SubscriptionSoftware},
	{keyword: "icloud", subscriptionType: model.SubscriptionCloud, amounts: &amountRange{1, 10}},
	{keyword: "dropbox", subscriptionType: model.SubscriptionCloud, amounts: &amountRange{10, 25}},
	{keyword: "google storage", subscriptionType: model.SubscriptionCloud, amounts: &amountRange{2, 20}},
	{keyword: "google one", subscriptionType: model.SubscriptionCloud, amounts: &amountRange{2, 20}},
	{keyword: "adobe", subscriptionType: model.SubscriptionSoftware, amounts: &amountRange{10, 80}},
	{keyword: "microsoft 365", subscriptionType: model.SubscriptionSoftware, amounts: &amountRange{7, 25}},
	{keyword: "office 365", subscriptionType: model.SubscriptionSoftware, amounts: &amountRange{7, 25}},
	{keyword: "github", subscriptionType: model.SubscriptionSoftware, amounts: &amountRange{4, 25}},
	{keyword: "1password", subscriptionType: model.SubscriptionSoftware, amounts: &amountRange{3, 10}},
	{keyword: "nytimes", subscriptionType: model.SubscriptionNews, amounts: &amountRange{4, 30}},
	{keyword: "wall street journal", subscriptionType: model.SubscriptionNews},
	{keyword: "washington post", subscriptionType: model.SubscriptionNews, amounts: &amountRange{4, 15}},
	{keyword: "economist", subscriptionType: model.SubscriptionNews},
	{keyword: "substack", subscriptionType: model.SubscriptionNews, amounts: &amountRange{5, 50}},
	{keyword: "patreon", subscriptionType: model.SubscriptionOther, amounts: &amountRange{1, 100}},
	{keyword: "onlyfans", subscriptionType: model.SubscriptionOther},
	{keyword: "playstation", subscriptionType: model.SubscriptionGaming, amounts: &amountRange{5, 70}},
	{keyword: "xbox", subscriptionType: model.SubscriptionGaming, amounts: &amountRange{5, 70}},
	{keyword: "nintendo", subscriptionType: model.SubscriptionGaming, amounts: &amountRange{4, 60}},
	{keyword: "steam", subscriptionType: model.SubscriptionGaming},
	{keyword: "planet fitness", subscriptionType: model.SubscriptionFitness, amounts: &amountRange{10, 30}},
	{keyword: "peloton", subscriptionType: model.SubscriptionFitness, amounts: &amountRange{13, 50}},
	{keyword: "gym", subscriptionType: model.SubscriptionFitness, amounts: &amountRange{10, 200}},
	{keyword: "fitness", subscriptionType: model.SubscriptionFitness, amounts: &amountRange{10, 200}},
	{keyword: "prime video", subscriptionType: model.SubscriptionStreaming},
	{keyword: "amazon prime", subscriptionType: model.SubscriptionOther, amounts: &amountRange{10, 150}},
	{keyword: "youtube premium", subscriptionType: model.SubscriptionStreaming, amounts: &amountRange{8, 25}},
	{pattern: `(?:^|\s)(?:sub|subscription|membership)(?:\s|$)`, isRegex: true, subscriptionType: model.SubscriptionOther},
}

var billEntries = []classifierEntry{
	{keyword: "electric"},
	{keyword: "energy"},
	{keyword: "power"},
	{keyword: "gas co"},
	{keyword: "water"},
	{keyword: "sewer"},
	{keyword: "utility"},
	{keyword: "utilities"},
	{keyword: "comcast"},
	{keyword: "xfinity"},
	{keyword: "verizon"},
	{keyword: "at&t"},
	{keyword: "t-mobile"},
	{keyword: "sprint"},
	{keyword: "internet"},
	{keyword: "cable"},
	{keyword: "insurance"},
	{keyword: "geico"},
	{keyword: "allstate"},
	{keyword: "state farm"},
	{keyword: "progressive"},
	{keyword: "rent"},
	{keyword: "mortgage"},
	{keyword: "lease"},
	{keyword: "property management"},
	{keyword: "loan"},
	{keyword: "lending"},
	{keyword: "student loan"},
	{keyword: "hoa"},
	{pattern: `(?:^|\s)(?:bill|billpay|bill pay)(?:\s|$)`, isRegex: true},
}

var incomeEntries = []classifierEntry{
	{keyword: "payroll"},
	{keyword: "salary"},
	{keyword: "direct deposit"},
	{keyword: "direct dep"},
	{keyword: "paycheck"},
	{keyword: "wages"},
	{keyword: "pension"},
	{keyword: "social security"},
	{keyword: "ssa treas"},
	{keyword: "dividend"},
	{keyword: "interest payment"},
	{keyword: "refund"},
	{pattern: `(?:^|\s)(?:dd|payrl)(?:\s|$)`, isRegex: true},
}

var transferEntries = []classifierEntry{
	{keyword: "transfer"},
	{keyword: "xfer"},
	{keyword: "zelle"},
	{keyword: "venmo"},
	{keyword: "cash app"},
	{keyword: "paypal transfer"},
	{keyword: "wire"},
	{keyword: "withdrawal to"},
	{keyword: "deposit from savings"},
}

// merchantCodeTypes maps MCC-style merchant codes to a pattern type.
// When a code is supplied it is consulted before the keyword tables.
var merchantCodeTypes = map[string]model.PatternType{
	"4899": model.PatternTypeBill,         // cable and pay television
	"4900": model.PatternTypeBill,         // utilities
	"4814": model.PatternTypeBill,         // telecom
	"6300": model.PatternTypeBill,         // insurance
	"5968": model.PatternTypeSubscription, // continuity/subscription merchants
	"5815": model.PatternTypeSubscription, // digital goods: media
	"5816": model.PatternTypeSubscription, // digital goods: games
	"5817": model.PatternTypeSubscription, // digital goods: software
	"7997": model.PatternTypeSubscription, // membership clubs
	"4829": model.PatternTypeTransfer,     // money transfer
}

// Patterns stripped from raw counterparty names before matching.
var (
	referenceSuffixRe = regexp.MustCompile(`[\s#*]+[a-z]*\d{3,}[a-z0-9]*$`)
	channelPrefixRe   = regexp.MustCompile(`^(?:(?:pos|ach|web|ppd|ckcd|dbt)\s+|(?:tst|sq|py)\s?\*\s*)`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// NormalizeCounterpartyName lowercases the name, strips processor
// prefixes and trailing reference numbers, and collapses whitespace.
func NormalizeCounterpartyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = channelPrefixRe.ReplaceAllString(n, "")
	n = referenceSuffixRe.ReplaceAllString(n, "")
	n = whitespaceRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Classify matches the counterparty name (and optional merchant code)
// against the pattern tables. A representative amount refines the score
// when the matched entry carries a typical range. Unmatched names yield
// the "other" type with a zero score, never an error.
func (c *Classifier) Classify(name string, amount float64, merchantCode string) model.Classification {
	normalized := NormalizeCounterpartyName(name)

	if merchantCode != "" {
		if pt, ok := c.mccTypes[merchantCode]; ok {
			result := model.Classification{Type: pt, Matched: true, Score: nameMatchCredit}
			if pt == model.PatternTypeSubscription {
				result.SubscriptionType = model.SubscriptionOther
			}
			// A keyword hit on top of the code match refines subtype and score.
			if entry, table, ok := c.findEntry(normalized); ok && table == pt {
				result.SubscriptionType = entry.subscriptionType
				result.Score = c.scoreEntry(entry, amount)
			}
			return result
		}
	}

	entry, patternType, ok := c.findEntry(normalized)
	if !ok {
		return model.Classification{Type: model.PatternTypeOther}
	}

	result := model.Classification{
		Type:    patternType,
		Matched: true,
		Score:   c.scoreEntry(entry, amount),
	}
	if patternType == model.PatternTypeSubscription {
		result.SubscriptionType = entry.subscriptionType
	}
	return result
}

// findEntry returns the first entry whose keyword or regex matches the
// normalized name, walking tables in priority order.
func (c *Classifier) findEntry(normalized string) (classifierEntry, model.PatternType, bool) {
	for _, table := range c.tables {
		for _, e := range table.entries {
			if c.entryMatches(e, normalized) {
				return e, table.patternType, true
			}
		}
	}
	return classifierEntry{}, model.PatternTypeOther, false
}

func (c *Classifier) entryMatches(e classifierEntry, normalized string) bool {
	if e.isRegex {
		re, ok := c.compiled[e.pattern]
		return ok && re.MatchString(normalized)
	}
	return strings.Contains(normalized, e.keyword)
}

// Score weights: a name match earns the base credit; amount-range fit
// earns up to the remainder. Entries without a typical range earn half
// the amount credit since the amount offers no evidence either way.
const (
	nameMatchCredit     = 0.6
	amountRangeCredit   = 0.4
	neutralAmountCredit = 0.2
)

// CalculatePatternScore folds name-match and amount-range fit into the
// single 0..1 score consumed by the detector's confidence weighting.
func (c *Classifier) CalculatePatternScore(name string, amount float64, merchantCode string) float64 {
	return c.Classify(name, amount, merchantCode).Score
}

func (c *Classifier) scoreEntry(entry classifierEntry, amount float64) float64 {
	if entry.amounts == nil {
		return nameMatchCredit + neutralAmountCredit
	}
	return nameMatchCredit + amountRangeCredit*amountRangeFit(*entry.amounts, amount)
}

// amountRangeFit returns 1 inside the typical range, decays linearly to 0
// at twice the distance outside either bound.
func amountRangeFit(r amountRange, amount float64) float64 {
	amt := amount
	if amt < 0 {
		amt = -amt
	}

	if amt >= r.min && amt <= r.max {
		return 1
	}

	var factor float64
	switch {
	case amt < r.min && amt > 0:
		factor = r.min / amt
	case amt > r.max && r.max > 0:
		factor = amt / r.max
	default:
		return 0
	}
	return clamp(2-factor, 0, 1)
}

// SuggestDisplayName derives a human-friendly label from the raw
// counterparty name. Presentation only; never confidence-relevant.
func SuggestDisplayName(name string) string {
	normalized := NormalizeCounterpartyName(name)
	if normalized == "" {
		return strings.TrimSpace(name)
	}

	words := strings.Fields(normalized)
	for i, w := range words {
		if len(w) <= 3 && i > 0 {
			continue // keep short connectives lowercase
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
