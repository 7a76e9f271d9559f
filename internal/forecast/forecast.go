// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/adapters"
	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/finance"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	RunID  string `json:"runId"`
	Name   string `json:"name"`
	Ledger Ledger `json:"ledger"`
}

// BuildInputs assembles engine inputs from a scenario configuration and the
// parsed opportunities.
func BuildInputs(conf config.Configuration, opportunities []pipeline.Opportunity) (Inputs, error) {
	policy, err := ParsePolicy(conf.Policy)
	if err != nil {
		return Inputs{}, err
	}

	probabilities, err := conf.ProbabilityTable()
	if err != nil {
		return Inputs{}, err
	}

	return Inputs{
		Opportunities:        opportunities,
		Probabilities:        probabilities,
		StartingUnrestricted: conf.Position.UnrestrictedReserves,
		StartingTotal:        conf.Position.TotalFunds,
		BaseCosts: finance.FixedCosts{
			Staff:      conf.FixedCosts.Staff,
			BackOffice: conf.FixedCosts.BackOffice,
		},
		CostChanges:  adapters.CostChangesToFinance(conf.CostChanges),
		Deposits:     adapters.DepositsToFinance(conf.ReserveDeposits),
		SpecialCosts: adapters.SpecialCostsToFinance(conf.SpecialProjects),
		Active:       conf.Toggles(),
		Policy:       policy,
	}, nil
}

// GetForecast computes the forecast for one scenario.
func GetForecast(logger *zap.Logger, conf config.Configuration, opportunities []pipeline.Opportunity) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	in, err := BuildInputs(conf, opportunities)
	if err != nil {
		return Forecast{}, fmt.Errorf("failed to build forecast inputs: %w", err)
	}

	name := conf.Scenario
	if len(conf.Probabilities) > 0 {
		name += " (adjusted)"
	}
	return run(logger, name, in)
}

// RunPresets computes one forecast per named probability preset. Each run
// uses the preset's weights unchanged; everything else comes from in.
func RunPresets(logger *zap.Logger, in Inputs, presets []string) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Forecast, 0, len(presets))
	for _, name := range presets {
		table, err := clusters.Preset(name)
		if err != nil {
			return results, err
		}
		scenario := in
		scenario.Probabilities = table

		result, err := run(logger, name, scenario)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ComparePresets computes the scenario once for every built-in preset.
func ComparePresets(logger *zap.Logger, conf config.Configuration, opportunities []pipeline.Opportunity) ([]Forecast, error) {
	in, err := BuildInputs(conf, opportunities)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast inputs: %w", err)
	}
	return RunPresets(logger, in, clusters.PresetNames())
}

func run(logger *zap.Logger, name string, in Inputs) (Forecast, error) {
	runID := uuid.NewString()
	start := time.Now()

	ledger, err := Run(logger.With(zap.String("runId", runID)), in)
	if err != nil {
		return Forecast{}, err
	}

	logger.Debug(fmt.Sprintf("computed forecast %s", name),
		zap.String("op", "forecast.GetForecast"),
		zap.String("runId", runID),
		zap.String("policy", in.Policy.String()),
		zap.Int("opportunities", len(in.Opportunities)),
		zap.Duration("duration", time.Since(start)),
	)
	return Forecast{RunID: runID, Name: name, Ledger: ledger}, nil
}
