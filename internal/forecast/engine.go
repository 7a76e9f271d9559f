package forecast

import (
	"fmt"
	"strings"

	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/adapters"
	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/datetime"
	"github.com/iwvelando/pipeline-forecast/pkg/finance"
	"go.uber.org/zap"
)

// Policy selects how the monthly net position moves the reserve balances.
type Policy int

const (
	// PolicyStaticRestricted clamps unrecovered staff costs at zero, adds the
	// net position and deposits to unrestricted reserves and holds restricted
	// funds fixed for the whole horizon.
	PolicyStaticRestricted Policy = iota

	// PolicyCompounding nets the signed staff shortfall into costs to cover.
	// A surplus is added to restricted funds and a deficit is taken from
	// unrestricted reserves, so both balances compound.
	PolicyCompounding
)

// ParsePolicy maps a policy name to a Policy. The empty string selects the
// default, PolicyStaticRestricted.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", constants.PolicyStatic, "a":
		return PolicyStaticRestricted, nil
	case constants.PolicyCompounding, "b":
		return PolicyCompounding, nil
	}
	return PolicyStaticRestricted, fmt.Errorf("unknown reserve policy %q, expected %s or %s",
		name, constants.PolicyStatic, constants.PolicyCompounding)
}

func (p Policy) String() string {
	if p == PolicyCompounding {
		return constants.PolicyCompounding
	}
	return constants.PolicyStatic
}

// MarshalText renders the policy by name in JSON output.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts any name ParsePolicy accepts.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Inputs is an immutable snapshot of everything one forecast run needs.
type Inputs struct {
	Opportunities        []pipeline.Opportunity
	Probabilities        clusters.Table
	StartingUnrestricted float64
	StartingTotal        float64
	BaseCosts            finance.FixedCosts
	CostChanges          []finance.CostChange
	Deposits             []finance.Deposit
	SpecialCosts         []finance.SpecialCost
	// Active switches opportunities by name; absent names are active.
	Active map[string]bool
	Policy Policy
}

// Row is one month of the ledger. Flow fields are probability-weighted
// monthly amounts; balance fields are closing balances.
type Row struct {
	Month                    int     `json:"month"`
	Label                    string  `json:"monthLabel"`
	TotalIncome              float64 `json:"totalIncome"`
	ProjectStaffCosts        float64 `json:"projectStaffCosts"`
	ProjectExpenses          float64 `json:"projectExpenses"`
	ProjectContribution      float64 `json:"projectContribution"`
	FixedStaffCosts          float64 `json:"fixedStaffCosts"`
	StaffRecovery            float64 `json:"staffRecovery"`
	UnrecoveredStaffCosts    float64 `json:"unrecoveredStaffCosts"`
	FixedBackOfficeCosts     float64 `json:"fixedBackOfficeCosts"`
	CostsToCover             float64 `json:"costsToCover"`
	NetPosition              float64 `json:"netPosition"`
	ReserveDeposit           float64 `json:"reserveDeposit"`
	SpecialProjectsCost      float64 `json:"specialProjectsCost"`
	UnrestrictedReserves     float64 `json:"unrestrictedReserves"`
	UnrestrictedAfterSpecial float64 `json:"unrestrictedAfterSpecial"`
	RestrictedFunds          float64 `json:"restrictedFunds"`
	TotalFunds               float64 `json:"totalFunds"`
}

// Ledger is the opening row followed by one row per horizon month.
type Ledger struct {
	Policy Policy `json:"policy"`
	Rows   []Row  `json:"rows"`
}

// Opening returns the "Current" row.
func (l Ledger) Opening() Row {
	if len(l.Rows) == 0 {
		return Row{}
	}
	return l.Rows[0]
}

// Months returns the forecast rows, excluding the opening row.
func (l Ledger) Months() []Row {
	if len(l.Rows) < 2 {
		return nil
	}
	return l.Rows[1:]
}

// Row returns the row for label, if present.
func (l Ledger) Row(label string) (Row, bool) {
	for _, row := range l.Rows {
		if row.Label == label {
			return row, true
		}
	}
	return Row{}, false
}

// Run computes the ledger for in. It reads its inputs only and always
// produces the opening row plus one row per horizon month.
func Run(logger *zap.Logger, in Inputs) (Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	schedule := finance.NewCostSchedule(in.BaseCosts, in.CostChanges)
	processor := finance.NewPipelineProcessor(logger)
	items := adapters.OpportunitiesToPipelineItems(in.Opportunities)

	restricted := in.StartingTotal - in.StartingUnrestricted
	opening := Row{
		Month:                    0,
		Label:                    constants.CurrentLabel,
		UnrestrictedReserves:     in.StartingUnrestricted,
		UnrestrictedAfterSpecial: in.StartingUnrestricted,
		RestrictedFunds:          restricted,
		TotalFunds:               in.StartingTotal,
	}

	ledger := Ledger{Policy: in.Policy, Rows: make([]Row, 0, constants.HorizonMonths+1)}
	ledger.Rows = append(ledger.Rows, opening)

	prev := opening
	for m := 1; m <= constants.HorizonMonths; m++ {
		label := datetime.MonthLabel(m)

		costs := schedule.Resolve(label)
		special := finance.SpecialCostFor(label, in.SpecialCosts)
		deposits := finance.DepositsFor(label, in.Deposits)

		totals, err := processor.WeightedTotals(label, items, in.Probabilities, in.Active)
		if err != nil {
			return Ledger{}, fmt.Errorf("weighting pipeline for %s: %w", label, err)
		}

		row := Row{
			Month:                m,
			Label:                label,
			TotalIncome:          totals.Income,
			ProjectStaffCosts:    totals.Staff,
			ProjectExpenses:      totals.Expenses,
			ProjectContribution:  totals.Contribution(),
			FixedStaffCosts:      costs.Staff,
			StaffRecovery:        totals.Staff,
			FixedBackOfficeCosts: costs.BackOffice,
			ReserveDeposit:       deposits,
			SpecialProjectsCost:  special,
		}

		switch in.Policy {
		case PolicyCompounding:
			row.UnrecoveredStaffCosts = row.FixedStaffCosts - row.StaffRecovery
			row.CostsToCover = row.UnrecoveredStaffCosts + row.FixedBackOfficeCosts
			row.NetPosition = row.ProjectContribution - row.CostsToCover
			row.UnrestrictedReserves = prev.UnrestrictedReserves + deposits
			row.RestrictedFunds = prev.RestrictedFunds
			if row.NetPosition >= 0 {
				row.RestrictedFunds += row.NetPosition
			} else {
				row.UnrestrictedReserves += row.NetPosition
			}
		default:
			row.UnrecoveredStaffCosts = max(0, row.FixedStaffCosts-row.StaffRecovery)
			row.CostsToCover = row.UnrecoveredStaffCosts + row.FixedBackOfficeCosts
			row.NetPosition = row.ProjectContribution - row.UnrecoveredStaffCosts - row.FixedBackOfficeCosts
			row.UnrestrictedReserves = prev.UnrestrictedReserves + row.NetPosition + deposits
			row.RestrictedFunds = restricted
		}

		row.UnrestrictedAfterSpecial = row.UnrestrictedReserves - special
		row.TotalFunds = row.UnrestrictedReserves + row.RestrictedFunds

		logger.Debug("month computed",
			zap.String("op", "forecast.Run"),
			zap.String("month", label),
			zap.Float64("netPosition", row.NetPosition),
			zap.Float64("unrestrictedReserves", row.UnrestrictedReserves),
		)

		ledger.Rows = append(ledger.Rows, row)
		prev = row
	}

	return ledger, nil
}
