package parser_test

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestConditionComparesQuotedStrings(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{% if "a" == "a" %}yes{%/ if %}`)
	assert.Equal(t, got, "yes")
}

func TestConditionBacktickLiteralIsVerbatim(t *testing.T) {
	got := compile(t, newMemFS(), ".", "{% if `raw` == `raw` %}yes{%/ if %}")
	assert.Equal(t, got, "yes")
}

func TestConditionCrossTypeComparisonErrors(t *testing.T) {
	err := compileErr(t, newMemFS(), ".", `{% if "a" > 1 %}x{%/ if %}`)
	assert.ErrorContains(t, err, "cannot compare")
}

func TestConditionNegativeNumberLiteral(t *testing.T) {
	got := compile(t, newMemFS(), ".", `{% if -5 < 0 %}yes{%/ if %}`)
	assert.Equal(t, got, "yes")
}

func TestExpressionTrailingTokensIsSyntaxError(t *testing.T) {
	err := compileErr(t, newMemFS(), ".", "{{ 1 + 1 1 }}")
	assert.ErrorContains(t, err, "unexpected trailing tokens")
}
