package finance

import (
	"sort"

	"github.com/iwvelando/pipeline-forecast/pkg/datetime"
)

// FixedCosts is the monthly fixed staff and back-office cost pair.
type FixedCosts struct {
	Staff      float64 `json:"staff"`
	BackOffice float64 `json:"backOffice"`
}

// CostChange sets new fixed costs from Month onwards.
type CostChange struct {
	Month      string
	Staff      float64
	BackOffice float64
}

// Deposit is a one-time addition to unrestricted reserves in Month.
type Deposit struct {
	Month  string
	Amount float64
}

// SpecialCost is a special project cost reported against Month.
type SpecialCost struct {
	Month  string
	Amount float64
}

// CostSchedule resolves the fixed costs in force for any horizon month.
type CostSchedule struct {
	base    FixedCosts
	changes []CostChange
}

// NewCostSchedule creates a schedule starting from base. Changes are copied and
// ordered by month; changes with the same month keep their given order.
func NewCostSchedule(base FixedCosts, changes []CostChange) *CostSchedule {
	sorted := append([]CostChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return datetime.MonthIndex(sorted[i].Month) < datetime.MonthIndex(sorted[j].Month)
	})
	return &CostSchedule{base: base, changes: sorted}
}

// Base returns the costs in force before any change.
func (s *CostSchedule) Base() FixedCosts {
	return s.base
}

// Resolve returns the fixed costs for label: the latest change at or before
// label wins, otherwise the base costs apply. Changes whose month is not a
// horizon label are ignored, and so is an unknown target label.
func (s *CostSchedule) Resolve(label string) FixedCosts {
	target := datetime.MonthIndex(label)
	costs := s.base
	for _, change := range s.changes {
		idx := datetime.MonthIndex(change.Month)
		if idx > 0 && idx <= target {
			costs = FixedCosts{Staff: change.Staff, BackOffice: change.BackOffice}
		}
	}
	return costs
}

// DepositsFor sums the positive deposits scheduled for label.
func DepositsFor(label string, deposits []Deposit) float64 {
	total := 0.0
	for _, deposit := range deposits {
		if deposit.Month == label && deposit.Amount > 0 {
			total += deposit.Amount
		}
	}
	return total
}

// SpecialCostFor returns the first special cost scheduled for label, or 0.
func SpecialCostFor(label string, costs []SpecialCost) float64 {
	for _, cost := range costs {
		if cost.Month == label {
			return cost.Amount
		}
	}
	return 0
}
