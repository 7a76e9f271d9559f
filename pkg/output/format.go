// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/risk"
	"github.com/iwvelando/pipeline-forecast/pkg/format"
	"github.com/iwvelando/pipeline-forecast/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report pairs a forecast with its risk summary.
type Report struct {
	Forecast forecast.Forecast `json:"forecast"`
	Summary  risk.Summary      `json:"summary"`
	// CostChanges lists the months in which fixed staff costs change.
	CostChanges []string `json:"costChanges,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewReport summarizes f against threshold.
func NewReport(f forecast.Forecast, threshold float64) Report {
	return Report{
		Forecast:    f,
		Summary:     risk.Summarize(f.Ledger, threshold),
		CostChanges: risk.CostChangeMonths(f.Ledger),
	}
}

var prettyColumns = []string{
	"Month", "Income", "Contribution", "Unrecovered", "Back office",
	"Net", "Deposit", "Special", "Unrestricted", "After special",
	"Restricted", "Total",
}

const prettyWidth = 13

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, reports []Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		_, _ = p.Fprintf(w, "--- Results for scenario %s (%s policy) ---\n",
			report.Forecast.Name, report.Forecast.Ledger.Policy)

		header := make([]string, len(prettyColumns))
		rule := make([]string, len(prettyColumns))
		for j, col := range prettyColumns {
			header[j] = pad(col, j)
			rule[j] = strings.Repeat("_", prettyWidth)
		}
		_, _ = fmt.Fprintln(w, strings.Join(header, " | "))
		_, _ = fmt.Fprintln(w, strings.Join(rule, " | "))

		for _, row := range report.Forecast.Ledger.Rows {
			cells := []string{
				row.Label,
				format.Currency(row.TotalIncome),
				format.Currency(row.ProjectContribution),
				format.Currency(row.UnrecoveredStaffCosts),
				format.Currency(row.FixedBackOfficeCosts),
				format.Currency(row.NetPosition),
				format.Currency(row.ReserveDeposit),
				format.Currency(row.SpecialProjectsCost),
				format.Currency(row.UnrestrictedReserves),
				format.Currency(row.UnrestrictedAfterSpecial),
				format.Currency(row.RestrictedFunds),
				format.Currency(row.TotalFunds),
			}
			for j := range cells {
				cells[j] = pad(cells[j], j)
			}
			_, _ = fmt.Fprintln(w, strings.Join(cells, " | "))
		}

		writeSummary(p, w, report)
		if i < len(reports)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}
}

func pad(cell string, column int) string {
	if column == 0 {
		return fmt.Sprintf("%-*s", prettyWidth, cell)
	}
	return fmt.Sprintf("%*s", prettyWidth, cell)
}

func writeSummary(p *message.Printer, w io.Writer, report Report) {
	s := report.Summary
	status := "OK"
	if s.AtRisk {
		status = "AT RISK"
	}

	_, _ = p.Fprintf(w, "\nStatus: %s (threshold %s)\n", status, format.Currency(s.Threshold))
	_, _ = p.Fprintf(w, "Min. unrestricted: %s\n", format.Currency(s.MinUnrestricted))
	_, _ = p.Fprintf(w, "Months below threshold: %d (first breach: %s)\n", s.MonthsBelowThreshold, s.FirstBreach)
	_, _ = p.Fprintf(w, "Total funds range: %s to %s\n", format.Currency(s.MinTotal), format.Currency(s.MaxTotal))
	_, _ = p.Fprintf(w, "Avg. staff recovery: %s (%s of fixed staff)\n",
		format.Currency(s.AverageStaffRecovery), format.Percent(s.AverageStaffRecoveryPct))
	if len(report.CostChanges) > 0 {
		_, _ = p.Fprintf(w, "Fixed staff cost changes: %s\n", strings.Join(report.CostChanges, ", "))
	}
	for _, warning := range report.Warnings {
		_, _ = p.Fprintf(w, "Warning: %s\n", warning)
	}
}

// ledger columns in CSV order
var csvColumns = []string{
	"month", "monthLabel", "totalIncome", "projectStaffCosts", "projectExpenses",
	"projectContribution", "fixedStaffCosts", "staffRecovery", "unrecoveredStaffCosts",
	"fixedBackOfficeCosts", "costsToCover", "netPosition", "reserveDeposit",
	"specialProjectsCost", "unrestrictedReserves", "unrestrictedAfterSpecial",
	"restrictedFunds", "totalFunds",
}

// CsvFormat writes every report's ledger in comma-separated value format. When
// more than one report is given a leading scenario column tells them apart.
func CsvFormat(w io.Writer, reports []Report) {
	multi := len(reports) > 1

	header := csvColumns
	if multi {
		header = append([]string{"scenario"}, csvColumns...)
	}
	writeCsvLine(w, header)

	for _, report := range reports {
		for _, row := range report.Forecast.Ledger.Rows {
			fields := []string{
				strconv.Itoa(row.Month),
				row.Label,
				amount(row.TotalIncome),
				amount(row.ProjectStaffCosts),
				amount(row.ProjectExpenses),
				amount(row.ProjectContribution),
				amount(row.FixedStaffCosts),
				amount(row.StaffRecovery),
				amount(row.UnrecoveredStaffCosts),
				amount(row.FixedBackOfficeCosts),
				amount(row.CostsToCover),
				amount(row.NetPosition),
				amount(row.ReserveDeposit),
				amount(row.SpecialProjectsCost),
				amount(row.UnrestrictedReserves),
				amount(row.UnrestrictedAfterSpecial),
				amount(row.RestrictedFunds),
				amount(row.TotalFunds),
			}
			if multi {
				fields = append([]string{report.Forecast.Name}, fields...)
			}
			writeCsvLine(w, fields)
		}
	}
}

// CsvString returns the CsvFormat rendering of a single report.
func CsvString(report Report) string {
	var b strings.Builder
	CsvFormat(&b, []Report{report})
	return b.String()
}

func amount(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}

func writeCsvLine(w io.Writer, fields []string) {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	_, _ = fmt.Fprintln(w, strings.Join(quoted, ","))
}

// JSONFormat writes the reports as an indented JSON array.
func JSONFormat(w io.Writer, reports []Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}
