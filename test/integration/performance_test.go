package integration

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/testutil"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// largePipeline repeats the example opportunities under distinct names.
func largePipeline(copies int) []pipeline.Opportunity {
	examples := pipeline.ExampleOpportunities()
	opportunities := make([]pipeline.Opportunity, 0, copies*len(examples))
	for i := 0; i < copies; i++ {
		for _, opp := range examples {
			opp.Name = fmt.Sprintf("%s %d", opp.Name, i)
			opportunities = append(opportunities, opp)
		}
	}
	return opportunities
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf := loadScenario(t)
	loadTime := time.Since(start)

	start = time.Now()
	var buf bytes.Buffer
	if err := pipeline.WriteTemplate(&buf, largePipeline(40)); err != nil {
		t.Fatalf("WriteTemplate failed: %v", err)
	}
	opportunities, err := pipeline.NewParser(logger).ParseWorkbook(&buf)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	parseTime := time.Since(start)

	start = time.Now()
	results, err := forecast.ComparePresets(logger, *conf, opportunities)
	if err != nil {
		t.Fatalf("ComparePresets failed: %v", err)
	}
	forecastTime := time.Since(start)

	totalTime := loadTime + parseTime + forecastTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Write and parse %d sheets: %v", len(opportunities), parseTime)
	t.Logf("  Compare presets: %v", forecastTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 30*time.Second {
		t.Errorf("Total processing time %v exceeds 30 second threshold", totalTime)
	}

	if len(opportunities) != 200 {
		t.Errorf("Expected 200 opportunities, got %d", len(opportunities))
	}
	if len(results) != len(clusters.PresetNames()) {
		t.Errorf("Expected %d results, got %d", len(clusters.PresetNames()), len(results))
	}
}

// TestMemoryUsage performs basic memory usage validation
func TestMemoryUsage(t *testing.T) {
	logger := zap.NewNop()
	opportunities := testutil.ParseExample(t)

	for i := 0; i < 100; i++ {
		conf := loadScenario(t)
		if _, err := forecast.GetForecast(logger, *conf, opportunities); err != nil {
			t.Fatalf("GetForecast failed on iteration %d: %v", i, err)
		}
	}

	t.Log("Successfully completed 100 iterations without memory issues")
}

// TestDataConsistency validates that multiple runs produce identical ledgers
func TestDataConsistency(t *testing.T) {
	logger := zap.NewNop()
	opportunities := testutil.ParseExample(t)

	var first forecast.Forecast
	for run := 0; run < 3; run++ {
		conf := loadScenario(t)
		result, err := forecast.GetForecast(logger, *conf, opportunities)
		if err != nil {
			t.Fatalf("GetForecast failed on run %d: %v", run, err)
		}

		if run == 0 {
			first = result
			continue
		}

		if result.RunID == first.RunID {
			t.Errorf("Run %d reused run ID %s", run, result.RunID)
		}
		if result.Name != first.Name {
			t.Errorf("Run %d: name mismatch %s != %s", run, result.Name, first.Name)
		}
		if !reflect.DeepEqual(result.Ledger, first.Ledger) {
			t.Errorf("Run %d: ledger differs from first run", run)
		}
	}
}
