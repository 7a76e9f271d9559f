// Package format renders monetary amounts for display.
package format

import (
	"fmt"
	"math"
	"strings"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "£"

// Currency returns a currency string with a pound sign and thousands
// separators, rounded to whole pounds (e.g., "-£1,235").
func Currency(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.0f", math.Round(math.Abs(amount))))
	if math.Round(amount) < 0 {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

// Percent formats a percentage with no decimals (e.g., "67%").
func Percent(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
