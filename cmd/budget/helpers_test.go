package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertromore/budget-sub019/internal/model"
)

func TestParsePatternTypes(t *testing.T) {
	types, err := parsePatternTypes("subscription, bill")
	require.NoError(t, err)
	assert.Equal(t, []model.PatternType{model.PatternTypeSubscription, model.PatternTypeBill}, types)

	types, err = parsePatternTypes("")
	require.NoError(t, err)
	assert.Nil(t, types)

	_, err = parsePatternTypes("subscription,unknown")
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "exactly-10", truncateString("exactly-10", 10))
	assert.Equal(t, "long st...", truncateString("long string here", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
}
