package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robertromore/budget-sub019/internal/model"
)

func TestNormalizeCounterpartyName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases and trims", "  Netflix  ", "netflix"},
		{"strips processor prefix", "POS NETFLIX.COM", "netflix.com"},
		{"strips square prefix", "SQ *BLUE BOTTLE COFFEE", "blue bottle coffee"},
		{"strips trailing reference number", "SPOTIFY #4821", "spotify"},
		{"strips long trailing id", "COMCAST 000123456789", "comcast"},
		{"collapses whitespace", "STATE   FARM    INSURANCE", "state farm insurance"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCounterpartyName(tt.raw))
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name        string
		counterpart string
		amount      float64
		code        string
		wantType    model.PatternType
		wantSubType model.SubscriptionType
		wantMatched bool
	}{
		{
			name:        "streaming subscription",
			counterpart: "NETFLIX.COM",
			amount:      -15.99,
			wantType:    model.PatternTypeSubscription,
			wantSubType: model.SubscriptionStreaming,
			wantMatched: true,
		},
		{
			name:        "music subscription",
			counterpart: "Spotify USA",
			amount:      -10.99,
			wantType:    model.PatternTypeSubscription,
			wantSubType: model.SubscriptionMusic,
			wantMatched: true,
		},
		{
			name:        "utility bill",
			counterpart: "PACIFIC POWER ELECTRIC",
			amount:      -120.00,
			wantType:    model.PatternTypeBill,
			wantMatched: true,
		},
		{
			name:        "payroll income",
			counterpart: "ACME CORP PAYROLL",
			amount:      2500.00,
			wantType:    model.PatternTypeIncome,
			wantMatched: true,
		},
		{
			name:        "transfer",
			counterpart: "ZELLE PAYMENT TO JANE",
			amount:      -50.00,
			wantType:    model.PatternTypeTransfer,
			wantMatched: true,
		},
		{
			name:        "unknown counterparty falls back to other",
			counterpart: "Joe's Corner Store",
			amount:      -23.45,
			wantType:    model.PatternTypeOther,
			wantMatched: false,
		},
		{
			name:        "merchant code consulted before keywords",
			counterpart: "SOME OPAQUE MERCHANT",
			amount:      -45.00,
			code:        "4900",
			wantType:    model.PatternTypeBill,
			wantMatched: true,
		},
		{
			name:        "subscription merchant code without keyword",
			counterpart: "XYZ DIGITAL",
			amount:      -9.99,
			code:        "5815",
			wantType:    model.PatternTypeSubscription,
			wantSubType: model.SubscriptionOther,
			wantMatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.counterpart, tt.amount, tt.code)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMatched, got.Matched)
			if tt.wantSubType != "" {
				assert.Equal(t, tt.wantSubType, got.SubscriptionType)
			}
			if !tt.wantMatched {
				assert.Zero(t, got.Score)
			} else {
				assert.Greater(t, got.Score, 0.0)
				assert.LessOrEqual(t, got.Score, 1.0)
			}
		})
	}
}

func TestCalculatePatternScore(t *testing.T) {
	c := NewClassifier()

	t.Run("amount inside typical range earns full credit", func(t *testing.T) {
		score := c.CalculatePatternScore("NETFLIX.COM", -15.99, "")
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("amount far outside the range loses the amount credit", func(t *testing.T) {
		score := c.CalculatePatternScore("NETFLIX.COM", -500.00, "")
		assert.InDelta(t, nameMatchCredit, score, 1e-9)
	})

	t.Run("amount slightly outside earns partial credit", func(t *testing.T) {
		// Netflix range tops out at 30; 36 is 1.2x over.
		score := c.CalculatePatternScore("NETFLIX.COM", -36.00, "")
		assert.Greater(t, score, nameMatchCredit)
		assert.Less(t, score, 1.0)
	})

	t.Run("no match scores zero", func(t *testing.T) {
		assert.Zero(t, c.CalculatePatternScore("Joe's Corner Store", -10, ""))
	})
}

func TestAmountRangeFit(t *testing.T) {
	r := amountRange{min: 10, max: 20}

	assert.InDelta(t, 1.0, amountRangeFit(r, 15), 1e-9)
	assert.InDelta(t, 1.0, amountRangeFit(r, -15), 1e-9, "sign is ignored")
	assert.InDelta(t, 1.0, amountRangeFit(r, 10), 1e-9)
	assert.InDelta(t, 1.0, amountRangeFit(r, 20), 1e-9)
	assert.InDelta(t, 0.5, amountRangeFit(r, 30), 1e-9, "1.5x over decays linearly")
	assert.InDelta(t, 0.0, amountRangeFit(r, 40), 1e-9, "2x over earns nothing")
	assert.InDelta(t, 0.0, amountRangeFit(r, 5), 1e-9, "half the minimum earns nothing")
	assert.InDelta(t, 0.0, amountRangeFit(r, 0), 1e-9)
}

func TestSuggestDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"NETFLIX.COM #12345", "Netflix.com"},
		{"SQ *BLUE BOTTLE COFFEE", "Blue Bottle Coffee"},
		{"state farm insurance", "State Farm Insurance"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestDisplayName(tt.raw))
	}
}
