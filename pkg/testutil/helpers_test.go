package testutil

import (
	"fmt"
	"testing"

	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
)

func TestFindScenario(t *testing.T) {
	results := []forecast.Forecast{
		{Name: "conservative", RunID: "a"},
		{Name: "realistic", RunID: "b"},
		{Name: "realistic (adjusted)", RunID: "c"},
	}

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
		expectedID  string
	}{
		{name: "Find conservative", searchName: "conservative", expectFound: true, expectedID: "a"},
		{name: "Find realistic", searchName: "realistic", expectFound: true, expectedID: "b"},
		{name: "Find adjusted", searchName: "realistic (adjusted)", expectFound: true, expectedID: "c"},
		{name: "Missing", searchName: "optimistic", expectFound: false},
		{name: "Empty search name", searchName: "", expectFound: false},
		{name: "Case sensitive search", searchName: "Realistic", expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindScenario(results, tt.searchName)

			if !tt.expectFound {
				if result != nil {
					t.Errorf("FindScenario() expected nil for %q but got %q", tt.searchName, result.Name)
				}
				return
			}
			if result == nil {
				t.Fatalf("FindScenario() expected to find %q but got nil", tt.searchName)
			}
			if result.RunID != tt.expectedID {
				t.Errorf("FindScenario() returned run %q, expected %q", result.RunID, tt.expectedID)
			}
		})
	}
}

func TestFindScenarioNilResults(t *testing.T) {
	if result := FindScenario(nil, "Any Scenario"); result != nil {
		t.Errorf("FindScenario() with nil results should return nil, got %v", result)
	}
}

func TestFindScenarioReturnsFirstMatch(t *testing.T) {
	results := make([]forecast.Forecast, 0, 100)
	for i := 0; i < 100; i++ {
		results = append(results, forecast.Forecast{Name: "Duplicate", RunID: fmt.Sprintf("run-%d", i)})
	}

	found := FindScenario(results, "Duplicate")
	if found != &results[0] {
		t.Errorf("FindScenario() should return pointer to first matching element")
	}
}

func TestParseExample(t *testing.T) {
	opportunities := ParseExample(t)
	expected := pipeline.ExampleOpportunities()

	if len(opportunities) != len(expected) {
		t.Fatalf("ParseExample() returned %d opportunities, expected %d", len(opportunities), len(expected))
	}
	for i := range expected {
		if opportunities[i].Name != expected[i].Name || opportunities[i].Cluster != expected[i].Cluster {
			t.Errorf("opportunity %d = %s/%s, expected %s/%s", i,
				opportunities[i].Name, opportunities[i].Cluster, expected[i].Name, expected[i].Cluster)
		}
	}
}
