// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/datetime"
)

// ValidateMonthLabel warns when a scheduled entry names a month outside the
// forecast horizon; such entries never take effect.
func ValidateMonthLabel(kind string, position int, label string) string {
	if datetime.ValidLabel(label) {
		return ""
	}
	return fmt.Sprintf("%s %d has month %q outside the forecast horizon (%s to %s) and will be ignored",
		kind, position, label, datetime.MonthLabel(1), datetime.MonthLabel(constants.HorizonMonths))
}

// ValidateScheduleSize warns when more entries are given than the planning
// surface normally allows.
func ValidateScheduleSize(kind string, count int) string {
	if count <= constants.MaxScheduleEntries {
		return ""
	}
	return fmt.Sprintf("%d %s entries given, more than the usual maximum of %d",
		count, kind, constants.MaxScheduleEntries)
}

// ValidateWeight checks a cluster probability override.
func ValidateWeight(cluster string, weight float64) []string {
	var warnings []string
	if weight < 0 || weight > constants.MaxProbability {
		warnings = append(warnings, fmt.Sprintf("Cluster '%s' weight %.2f is outside 0-100", cluster, weight))
	}
	if !clusters.IsKnown(cluster) {
		warnings = append(warnings, fmt.Sprintf("Cluster '%s' is not a well-known cluster; only opportunities with exactly this cluster name will use it", cluster))
	}
	return warnings
}

// ValidatePolicy checks a reserve policy name.
func ValidatePolicy(policy string) error {
	switch policy {
	case "", constants.PolicyStatic, constants.PolicyCompounding:
		return nil
	}
	return fmt.Errorf("expected policy of %s or %s, got %s",
		constants.PolicyStatic, constants.PolicyCompounding, policy)
}

// ScenarioConfig is the subset of a scenario configuration that is checked
// for warnings.
type ScenarioConfig struct {
	Scenario             string
	Policy               string
	Threshold            float64
	UnrestrictedReserves float64
	TotalFunds           float64
	Weights              []WeightConfig
	CostChanges          []string
	ReserveDeposits      []string
	SpecialProjects      []string
}

// WeightConfig is one cluster probability override.
type WeightConfig struct {
	Cluster string
	Weight  float64
}

// ConfigValidator performs whole-scenario validation
type ConfigValidator struct {
	Scenario ScenarioConfig
}

// ValidateAll validates the entire scenario and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string
	s := cv.Scenario

	if s.Scenario != "" {
		if _, err := clusters.Preset(s.Scenario); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if err := ValidatePolicy(s.Policy); err != nil {
		warnings = append(warnings, err.Error())
	}

	if s.Threshold < 0 {
		warnings = append(warnings, fmt.Sprintf("Threshold %.2f is negative", s.Threshold))
	}

	if s.TotalFunds < s.UnrestrictedReserves {
		warnings = append(warnings, fmt.Sprintf("Total funds %.2f are below unrestricted reserves %.2f; restricted funds will be negative",
			s.TotalFunds, s.UnrestrictedReserves))
	}

	for _, w := range s.Weights {
		warnings = append(warnings, ValidateWeight(w.Cluster, w.Weight)...)
	}

	schedules := []struct {
		kind   string
		months []string
	}{
		{"Cost change", s.CostChanges},
		{"Reserve deposit", s.ReserveDeposits},
		{"Special project cost", s.SpecialProjects},
	}
	for _, schedule := range schedules {
		if warning := ValidateScheduleSize(schedule.kind, len(schedule.months)); warning != "" {
			warnings = append(warnings, warning)
		}
		for i, month := range schedule.months {
			if warning := ValidateMonthLabel(schedule.kind, i+1, month); warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}
