// Package datetime maps forecast month ordinals to calendar labels and back.
package datetime

import (
	"time"

	"github.com/iwvelando/pipeline-forecast/pkg/constants"
)

// MonthLabelLayout is the format of month labels such as "Jan_2026".
const MonthLabelLayout = constants.MonthLabelLayout

var (
	horizonStart = time.Date(constants.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	horizon      = buildLabels(constants.HorizonMonths)
)

func buildLabels(months int) []string {
	labels := make([]string, months)
	for i := range labels {
		labels[i] = MonthLabel(i + 1)
	}
	return labels
}

// MonthLabel returns the label of forecast month n, where month 1 is
// January 2026. It returns an empty string for n < 1.
func MonthLabel(n int) string {
	if n < 1 {
		return ""
	}
	return horizonStart.AddDate(0, n-1, 0).Format(MonthLabelLayout)
}

// MonthIndex returns the 1-based position of label within the forecast
// horizon, or 0 when the label is not one of the horizon months.
func MonthIndex(label string) int {
	for i, candidate := range horizon {
		if candidate == label {
			return i + 1
		}
	}
	return 0
}

// ValidLabel reports whether label names a month inside the horizon.
func ValidLabel(label string) bool {
	return MonthIndex(label) > 0
}

// Labels returns the horizon month labels in order.
func Labels() []string {
	return append([]string(nil), horizon...)
}
