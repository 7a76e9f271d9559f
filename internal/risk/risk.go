// Package risk reduces a completed forecast ledger to a handful of scalar
// risk metrics.
package risk

import (
	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/mathutil"
)

// Summary holds the risk metrics for one ledger.
type Summary struct {
	Threshold               float64 `json:"threshold"`
	MinUnrestricted         float64 `json:"minUnrestricted"`
	MonthsBelowThreshold    int     `json:"monthsBelowThreshold"`
	FirstBreach             string  `json:"firstBreach"`
	MinTotal                float64 `json:"minTotal"`
	MaxTotal                float64 `json:"maxTotal"`
	AtRisk                  bool    `json:"atRisk"`
	AverageStaffRecovery    float64 `json:"averageStaffRecovery"`
	AverageStaffRecoveryPct float64 `json:"averageStaffRecoveryPct"`
}

// Summarize computes the risk summary of ledger against threshold.
//
// Minimum unrestricted reserves and the total funds range cover every row,
// the opening row included. Breach counting and recovery averages cover the
// forecast months only.
func Summarize(ledger forecast.Ledger, threshold float64) Summary {
	s := Summary{Threshold: threshold, FirstBreach: constants.NoBreach}
	if len(ledger.Rows) == 0 {
		return s
	}

	s.MinUnrestricted = ledger.Rows[0].UnrestrictedReserves
	s.MinTotal = ledger.Rows[0].TotalFunds
	s.MaxTotal = ledger.Rows[0].TotalFunds
	for _, row := range ledger.Rows {
		s.MinUnrestricted = mathutil.Min(s.MinUnrestricted, row.UnrestrictedReserves)
		s.MinTotal = mathutil.Min(s.MinTotal, row.TotalFunds)
		s.MaxTotal = mathutil.Max(s.MaxTotal, row.TotalFunds)
	}
	s.AtRisk = s.MinUnrestricted < threshold

	// Breaches are counted over forecast months; the opening row only feeds the minimum.
	months := ledger.Months()
	recovery := make([]float64, 0, len(months))
	fixedStaff := make([]float64, 0, len(months))
	for _, row := range months {
		if row.UnrestrictedReserves < threshold {
			if s.MonthsBelowThreshold == 0 {
				s.FirstBreach = row.Label
			}
			s.MonthsBelowThreshold++
		}
		recovery = append(recovery, row.StaffRecovery)
		fixedStaff = append(fixedStaff, row.FixedStaffCosts)
	}

	s.AverageStaffRecovery = mathutil.Mean(recovery)
	if avgFixed := mathutil.Mean(fixedStaff); avgFixed > 0 {
		s.AverageStaffRecoveryPct = mathutil.CalculatePercentage(s.AverageStaffRecovery, avgFixed)
	}
	return s
}

// CostChangeMonths returns the labels of forecast months whose fixed staff
// cost differs from the month before. The first forecast month is compared
// against nothing and never reported.
func CostChangeMonths(ledger forecast.Ledger) []string {
	var labels []string
	months := ledger.Months()
	for i := 1; i < len(months); i++ {
		if !mathutil.WithinTolerance(months[i].FixedStaffCosts, months[i-1].FixedStaffCosts, constants.CurrencyTolerance) {
			labels = append(labels, months[i].Label)
		}
	}
	return labels
}
