// Package pipeline turns a multi-sheet pipeline workbook into opportunity
// records and writes workbooks in the same layout.
package pipeline

// Figures holds one month's raw income, staff cost and expense for an
// opportunity, before probability weighting.
type Figures struct {
	Income   float64 `json:"income"`
	Staff    float64 `json:"staff"`
	Expenses float64 `json:"expenses"`
}

// Opportunity is one pipeline item, read from one workbook sheet.
type Opportunity struct {
	Name    string             `json:"name"`
	Cluster string             `json:"cluster"`
	Sheet   string             `json:"sheet,omitempty"`
	Months  map[string]Figures `json:"months"`
	// Labels keeps the month columns in the order they appeared.
	Labels []string `json:"-"`
}

// MonthFigures returns the figures recorded for label, or zeros when the
// opportunity has no column for that month.
func (o Opportunity) MonthFigures(label string) Figures {
	return o.Months[label]
}

// Names returns the distinct opportunity names in first-seen order.
func Names(opportunities []Opportunity) []string {
	seen := make(map[string]bool, len(opportunities))
	names := make([]string, 0, len(opportunities))
	for _, opp := range opportunities {
		if seen[opp.Name] {
			continue
		}
		seen[opp.Name] = true
		names = append(names, opp.Name)
	}
	return names
}
