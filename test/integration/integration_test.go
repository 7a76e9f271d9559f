package integration

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/output"
	"github.com/iwvelando/pipeline-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const tolerance = 1e-6

func loadScenario(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../scenario.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Fatalf("unexpected configuration warnings: %v", warnings)
	}
	return conf
}

// TestMainIntegrationBaseline runs the starter workbook through the sample
// scenario exactly as the forecast command does and checks the closing
// balances month by month.
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()
	conf := loadScenario(t)
	opportunities := testutil.ParseExample(t)

	result, err := forecast.GetForecast(logger, *conf, opportunities)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	if result.Name != "realistic (adjusted)" {
		t.Errorf("Name = %q, expected %q", result.Name, "realistic (adjusted)")
	}
	if len(result.Ledger.Rows) != constants.HorizonMonths+1 {
		t.Fatalf("expected %d rows, got %d", constants.HorizonMonths+1, len(result.Ledger.Rows))
	}

	expected := []struct {
		label        string
		income       float64
		net          float64
		unrestricted float64
		afterSpecial float64
		total        float64
	}{
		{"Current", 0, 0, 205500, 205500, 363600},
		{"Jan_2026", 50000, -16000, 189500, 189500, 347600},
		{"Mar_2026", 50000, -17000, 156500, 156500, 314600},
		{"Apr_2026", 50000, -17000, 164500, 164500, 322600},
		{"May_2026", 50000, -17000, 147500, 139500, 305600},
		{"Jul_2026", 63000, -5300, 125200, 125200, 283300},
		{"Sep_2026", 63000, -15800, 104100, 104100, 262200},
		{"Oct_2026", 70500, -9050, 95050, 95050, 253150},
		{"Jan_2027", 78000, -2750, 74200, 74200, 232300},
		{"Jun_2027", 78000, -2750, 60450, 60450, 218550},
	}

	for _, want := range expected {
		row, ok := result.Ledger.Row(want.label)
		if !ok {
			t.Errorf("missing row %s", want.label)
			continue
		}
		checks := map[string][2]float64{
			"income":       {row.TotalIncome, want.income},
			"net":          {row.NetPosition, want.net},
			"unrestricted": {row.UnrestrictedReserves, want.unrestricted},
			"afterSpecial": {row.UnrestrictedAfterSpecial, want.afterSpecial},
			"total":        {row.TotalFunds, want.total},
		}
		for field, pair := range checks {
			if math.Abs(pair[0]-pair[1]) > tolerance {
				t.Errorf("%s %s = %.2f, expected %.2f", want.label, field, pair[0], pair[1])
			}
		}
		if row.RestrictedFunds != 158100 {
			t.Errorf("%s restricted = %.2f, expected 158100", want.label, row.RestrictedFunds)
		}
	}

	report := output.NewReport(result, conf.Threshold)
	summary := report.Summary
	if !summary.AtRisk {
		t.Errorf("expected scenario to be at risk")
	}
	if summary.FirstBreach != "Jun_2026" {
		t.Errorf("FirstBreach = %s, expected Jun_2026", summary.FirstBreach)
	}
	if summary.MonthsBelowThreshold != 13 {
		t.Errorf("MonthsBelowThreshold = %d, expected 13", summary.MonthsBelowThreshold)
	}
	if math.Abs(summary.MinUnrestricted-60450) > tolerance {
		t.Errorf("MinUnrestricted = %.2f, expected 60450", summary.MinUnrestricted)
	}
	if summary.MaxTotal != 363600 {
		t.Errorf("MaxTotal = %.2f, expected 363600", summary.MaxTotal)
	}
	if strings.Join(report.CostChanges, ",") != "Mar_2026,Sep_2026" {
		t.Errorf("CostChanges = %v, expected [Mar_2026 Sep_2026]", report.CostChanges)
	}
}

// TestCompoundingPolicyConservesFunds checks that under the compounding
// policy every month's net position and deposits land in one of the two
// balances.
func TestCompoundingPolicyConservesFunds(t *testing.T) {
	logger := zap.NewNop()
	conf := loadScenario(t)
	conf.Policy = constants.PolicyCompounding

	result, err := forecast.GetForecast(logger, *conf, testutil.ParseExample(t))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if result.Ledger.Policy != forecast.PolicyCompounding {
		t.Fatalf("Policy = %s, expected compounding", result.Ledger.Policy)
	}

	prev := result.Ledger.Opening()
	for _, row := range result.Ledger.Months() {
		delta := row.TotalFunds - prev.TotalFunds
		if math.Abs(delta-(row.NetPosition+row.ReserveDeposit)) > tolerance {
			t.Errorf("%s: total moved by %.2f, expected %.2f", row.Label, delta, row.NetPosition+row.ReserveDeposit)
		}
		if row.RestrictedFunds < prev.RestrictedFunds-tolerance {
			t.Errorf("%s: restricted funds fell from %.2f to %.2f", row.Label, prev.RestrictedFunds, row.RestrictedFunds)
		}
		prev = row
	}
}

// TestComparePresetsOutput renders a preset comparison as CSV and checks
// one block of rows per preset.
func TestComparePresetsOutput(t *testing.T) {
	logger := zap.NewNop()
	conf := loadScenario(t)

	results, err := forecast.ComparePresets(logger, *conf, testutil.ParseExample(t))
	if err != nil {
		t.Fatalf("ComparePresets() error = %v", err)
	}

	reports := make([]output.Report, 0, len(results))
	for _, name := range []string{"conservative", "realistic", "optimistic"} {
		result := testutil.FindScenario(results, name)
		if result == nil {
			t.Fatalf("missing preset %s", name)
		}
		reports = append(reports, output.NewReport(*result, conf.Threshold))
	}

	if reports[0].Summary.MinUnrestricted > reports[2].Summary.MinUnrestricted {
		t.Errorf("conservative minimum %.2f should not exceed optimistic minimum %.2f",
			reports[0].Summary.MinUnrestricted, reports[2].Summary.MinUnrestricted)
	}

	var buf bytes.Buffer
	output.CsvFormat(&buf, reports)

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output did not parse: %v", err)
	}
	expectedRecords := 1 + len(reports)*(constants.HorizonMonths+1)
	if len(records) != expectedRecords {
		t.Fatalf("expected %d CSV records, got %d", expectedRecords, len(records))
	}
	if records[0][0] != "scenario" {
		t.Errorf("expected leading scenario column, got %q", records[0][0])
	}
	if records[1][0] != "conservative" || records[len(records)-1][0] != "optimistic" {
		t.Errorf("unexpected scenario order: first %q, last %q", records[1][0], records[len(records)-1][0])
	}
}
