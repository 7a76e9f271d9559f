package datetime

import (
	"testing"

	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		name     string
		month    int
		expected string
	}{
		{"First month", 1, "Jan_2026"},
		{"Mid year", 6, "Jun_2026"},
		{"Last month of first year", 12, "Dec_2026"},
		{"Year rollover", 13, "Jan_2027"},
		{"End of horizon", 18, "Jun_2027"},
		{"Beyond horizon", 25, "Jan_2028"},
		{"Zero", 0, ""},
		{"Negative", -3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MonthLabel(tt.month))
		})
	}
}

func TestMonthIndexRoundTrip(t *testing.T) {
	for n := 1; n <= constants.HorizonMonths; n++ {
		assert.Equal(t, n, MonthIndex(MonthLabel(n)), "month %d", n)
	}
}

func TestMonthIndexNoMatch(t *testing.T) {
	tests := []string{"", "Current", "jan_2026", "Jul_2027", "Dec_2025", "2026-01", " Jan_2026"}
	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, 0, MonthIndex(label))
			assert.False(t, ValidLabel(label))
		})
	}
}

func TestLabels(t *testing.T) {
	labels := Labels()
	require.Len(t, labels, constants.HorizonMonths)
	assert.Equal(t, "Jan_2026", labels[0])
	assert.Equal(t, "Jun_2027", labels[len(labels)-1])

	labels[0] = "mutated"
	assert.Equal(t, "Jan_2026", Labels()[0], "Labels must return a copy")
}
