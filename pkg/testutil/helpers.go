// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"testing"

	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// ExampleWorkbook returns the starter workbook as .xlsx bytes.
func ExampleWorkbook(tb testing.TB) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := pipeline.WriteTemplate(&buf, pipeline.ExampleOpportunities()); err != nil {
		tb.Fatalf("WriteTemplate() error = %v", err)
	}
	return buf.Bytes()
}

// ParseExample parses the starter workbook back into opportunities.
func ParseExample(tb testing.TB) []pipeline.Opportunity {
	tb.Helper()
	opportunities, err := pipeline.NewParser(nil).ParseWorkbook(bytes.NewReader(ExampleWorkbook(tb)))
	if err != nil {
		tb.Fatalf("ParseWorkbook() error = %v", err)
	}
	return opportunities
}
