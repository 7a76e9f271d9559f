// Package finance provides the monthly building blocks of the reserve
// forecast: fixed cost resolution, scheduled deposits and costs, and
// probability-weighted pipeline totals.
package finance

import (
	"fmt"

	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// PipelineItem is an opportunity that reports raw monthly figures.
type PipelineItem interface {
	GetName() string
	GetCluster() string
	GetFigures(label string) (income, staff, expenses float64)
}

// MonthTotals holds the probability-weighted pipeline totals for one month.
type MonthTotals struct {
	Income   float64
	Staff    float64
	Expenses float64
}

// Contribution is weighted income less weighted project staff and expenses.
func (t MonthTotals) Contribution() float64 {
	return t.Income - t.Staff - t.Expenses
}

// IsActive reports whether name is switched on. Names missing from toggles
// are active.
func IsActive(toggles map[string]bool, name string) bool {
	active, ok := toggles[name]
	return !ok || active
}

// PipelineProcessor weights pipeline figures by cluster probability.
type PipelineProcessor struct {
	logger *zap.Logger
}

// NewPipelineProcessor creates a new pipeline processor with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewPipelineProcessor(logger *zap.Logger) *PipelineProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineProcessor{logger: logger}
}

// WeightedTotals sums every active item's figures for label, each multiplied
// by its cluster's probability. Inactive items contribute nothing.
func (pp *PipelineProcessor) WeightedTotals(label string, items []PipelineItem, probabilities clusters.Table, toggles map[string]bool) (MonthTotals, error) {
	if label == "" {
		return MonthTotals{}, fmt.Errorf("month label cannot be empty")
	}

	var totals MonthTotals
	for _, item := range items {
		if item == nil {
			pp.logger.Warn("Skipping nil pipeline item")
			continue
		}
		if !IsActive(toggles, item.GetName()) {
			continue
		}

		weight := probabilities.Weight(item.GetCluster())
		if weight == 0 {
			continue
		}

		income, staff, expenses := item.GetFigures(label)
		totals.Income += mathutil.ApplyPercentage(income, weight)
		totals.Staff += mathutil.ApplyPercentage(staff, weight)
		totals.Expenses += mathutil.ApplyPercentage(expenses, weight)

		if !mathutil.IsZero(income) || !mathutil.IsZero(staff) || !mathutil.IsZero(expenses) {
			pp.logger.Debug("Opportunity active",
				zap.String("month", label),
				zap.String("opportunity", item.GetName()),
				zap.String("cluster", item.GetCluster()),
				zap.Float64("weight", weight),
			)
		}
	}
	return totals, nil
}
