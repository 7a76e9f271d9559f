package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Round(tt.input), 0.001)
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small negative", -0.001, true},
		{"Exactly tolerance", 0.01, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsZero(tt.input))
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(100.0, 100.5, 1.0))
	assert.True(t, WithinTolerance(100.0, 101.0, 1.0))
	assert.False(t, WithinTolerance(100.0, 101.5, 1.0))
	assert.True(t, WithinTolerance(-5.0, -5.0, 0))
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		min, max float64
	}{
		{"Ordered", 1, 2, 1, 2},
		{"Reversed", 2, 1, 1, 2},
		{"Equal", 3, 3, 3, 3},
		{"Negative and zero", -15000, 0, -15000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.min, Min(tt.a, tt.b))
			assert.Equal(t, tt.max, Max(tt.a, tt.b))
		})
	}
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 30000.0, Mean([]float64{30000, 30000, 30000}))
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"Half", 50, 100, 50},
		{"Recovery rate", 30000, 45000, 66.66666666666667},
		{"Over one hundred", 60000, 45000, 133.33333333333331},
		{"Zero total", 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculatePercentage(tt.value, tt.total), 1e-9)
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Full weight", 50000, 100, 50000},
		{"Proposal weight", 10000, 65, 6500},
		{"Zero weight", 10000, 0, 0},
		{"Negative value", -2000, 50, -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ApplyPercentage(tt.value, tt.percentage), 1e-9)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		value  float64
		parsed bool
	}{
		{"Integer", "50000", 50000, true},
		{"Decimal", "1234.5", 1234.5, true},
		{"Padded", "  42 ", 42, true},
		{"Negative", "-300", -300, true},
		{"Scientific", "1e3", 1000, true},
		{"Blank", "", 0, false},
		{"Whitespace", "   ", 0, false},
		{"Text", "TBC", 0, false},
		{"Thousands separator", "1,000", 0, false},
		{"NaN text", "nan", 0, false},
		{"Infinity", "Inf", 0, false},
		{"Lowercase infinity", "inf", 0, false},
		{"Underscore separator", "1_000", 0, false},
		{"Hex float", "0x1p3", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.parsed, ok)
			assert.Equal(t, tt.value, value)
			assert.False(t, math.IsNaN(value))
		})
	}
}
