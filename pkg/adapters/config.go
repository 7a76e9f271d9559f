// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/finance"
)

// OpportunityAdapter wraps pipeline.Opportunity to implement finance.PipelineItem
type OpportunityAdapter struct {
	Opportunity pipeline.Opportunity
}

// GetName returns the opportunity name
func (w OpportunityAdapter) GetName() string {
	return w.Opportunity.Name
}

// GetCluster returns the opportunity cluster
func (w OpportunityAdapter) GetCluster() string {
	return w.Opportunity.Cluster
}

// GetFigures returns the raw figures recorded for label
func (w OpportunityAdapter) GetFigures(label string) (income, staff, expenses float64) {
	f := w.Opportunity.MonthFigures(label)
	return f.Income, f.Staff, f.Expenses
}

// OpportunitiesToPipelineItems converts pipeline.Opportunity slices to finance.PipelineItem slices
func OpportunitiesToPipelineItems(opportunities []pipeline.Opportunity) []finance.PipelineItem {
	if opportunities == nil {
		return nil
	}

	items := make([]finance.PipelineItem, 0, len(opportunities))
	for _, opp := range opportunities {
		items = append(items, OpportunityAdapter{Opportunity: opp})
	}
	return items
}

// CostChangesToFinance converts config.CostChange slices to finance.CostChange slices
func CostChangesToFinance(changes []config.CostChange) []finance.CostChange {
	if changes == nil {
		return nil
	}

	out := make([]finance.CostChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, finance.CostChange{Month: c.Month, Staff: c.Staff, BackOffice: c.BackOffice})
	}
	return out
}

// DepositsToFinance converts scheduled reserve deposits to finance.Deposit slices
func DepositsToFinance(deposits []config.MonthAmount) []finance.Deposit {
	if deposits == nil {
		return nil
	}

	out := make([]finance.Deposit, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, finance.Deposit{Month: d.Month, Amount: d.Amount})
	}
	return out
}

// SpecialCostsToFinance converts scheduled special project costs to finance.SpecialCost slices
func SpecialCostsToFinance(costs []config.MonthAmount) []finance.SpecialCost {
	if costs == nil {
		return nil
	}

	out := make([]finance.SpecialCost, 0, len(costs))
	for _, c := range costs {
		out = append(out, finance.SpecialCost{Month: c.Month, Amount: c.Amount})
	}
	return out
}
