package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/datetime"
	"github.com/xuri/excelize/v2"
)

var rowTitles = []string{"Month", "Income", "Staff", "Expenses"}

// WriteTemplate writes opportunities as a workbook in the layout ParseWorkbook
// reads: one sheet per opportunity, name in A1, cluster in A2, month labels
// from B3 and income, staff and expenses in rows 4 to 6.
func WriteTemplate(w io.Writer, opportunities []Opportunity) error {
	if len(opportunities) == 0 {
		return errors.New("no opportunities to write")
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	for i, opp := range opportunities {
		sheet := fmt.Sprintf("Opportunity %d", i+1)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSheet(f, sheet, opp); err != nil {
			return fmt.Errorf("failed to write %s: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, opp Opportunity) error {
	if err := f.SetCellValue(sheet, "A1", opp.Name); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", opp.Cluster); err != nil {
		return err
	}
	for i, title := range rowTitles {
		cell, _ := excelize.CoordinatesToCellName(1, monthRow+1+i)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	labels := opp.Labels
	if len(labels) == 0 {
		labels = datetime.Labels()
	}
	for i, label := range labels {
		col := firstColumn + 1 + i
		figures := opp.MonthFigures(label)
		values := []interface{}{label, figures.Income, figures.Staff, figures.Expenses}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(col, monthRow+1+j)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExampleOpportunities returns a small pipeline covering every well-known
// cluster, used for the starter workbook.
func ExampleOpportunities() []Opportunity {
	examples := []struct {
		name     string
		cluster  string
		income   float64
		staff    float64
		expenses float64
		months   int
	}{
		{"Core Grant", constants.ClusterSecured, 50000, 30000, 5000, constants.HorizonMonths},
		{"Regional Partnership", constants.ClusterProposals, 20000, 12000, 2000, 12},
		{"Digital Skills Programme", constants.ClusterHighLikelihood, 15000, 9000, 1500, 9},
		{"Research Consortium", constants.ClusterMediumLikelihood, 25000, 15000, 4000, 6},
		{"Community Lab", constants.ClusterIdeas, 10000, 6000, 1000, 6},
	}

	labels := datetime.Labels()
	opportunities := make([]Opportunity, 0, len(examples))
	for _, ex := range examples {
		opp := Opportunity{
			Name:    ex.name,
			Cluster: ex.cluster,
			Months:  make(map[string]Figures, len(labels)),
			Labels:  labels,
		}
		start := len(labels) - ex.months
		for i, label := range labels {
			if i < start {
				opp.Months[label] = Figures{}
				continue
			}
			opp.Months[label] = Figures{Income: ex.income, Staff: ex.staff, Expenses: ex.expenses}
		}
		opportunities = append(opportunities, opp)
	}
	return opportunities
}
