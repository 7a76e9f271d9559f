// Package config defines the scenario configuration and includes functions
// for loading it and deriving forecast parameters from it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override scenario settings,
// e.g. PIPELINE_THRESHOLD.
const EnvPrefix = "PIPELINE"

// Configuration holds one forecast scenario.
type Configuration struct {
	Logging         LoggingConfig   `yaml:"logging,omitempty"`
	Output          OutputConfig    `yaml:"output,omitempty"`
	Workbook        string          `yaml:"workbook,omitempty"`
	Policy          string          `yaml:"policy,omitempty"`
	Scenario        string          `yaml:"scenario,omitempty"`
	Threshold       float64         `yaml:"threshold"`
	Position        Position        `yaml:"position"`
	FixedCosts      FixedCosts      `yaml:"fixedCosts"`
	Probabilities   []ClusterWeight `yaml:"probabilities,omitempty"`
	CostChanges     []CostChange    `yaml:"costChanges,omitempty"`
	ReserveDeposits []MonthAmount   `yaml:"reserveDeposits,omitempty"`
	SpecialProjects []MonthAmount   `yaml:"specialProjects,omitempty"`
	Opportunities   []Toggle        `yaml:"opportunities,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Position is the starting financial position. RestrictedFunds is only read
// when TotalFunds is not given.
type Position struct {
	UnrestrictedReserves float64 `yaml:"unrestrictedReserves"`
	TotalFunds           float64 `yaml:"totalFunds"`
	RestrictedFunds      float64 `yaml:"restrictedFunds,omitempty"`
}

// FixedCosts holds the base monthly fixed costs.
type FixedCosts struct {
	Staff      float64 `yaml:"staff"`
	BackOffice float64 `yaml:"backOffice"`
}

// ClusterWeight overrides the probability of one cluster, in percent.
type ClusterWeight struct {
	Cluster string  `yaml:"cluster"`
	Weight  float64 `yaml:"weight"`
}

// CostChange replaces the fixed costs from Month onwards.
type CostChange struct {
	Month      string  `yaml:"month"`
	Staff      float64 `yaml:"staff"`
	BackOffice float64 `yaml:"backOffice"`
}

// MonthAmount is an amount scheduled for one month.
type MonthAmount struct {
	Month  string  `yaml:"month"`
	Amount float64 `yaml:"amount"`
}

// Toggle switches an opportunity, by name, in or out of the forecast.
type Toggle struct {
	Name   string `yaml:"name"`
	Active bool   `yaml:"active"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("scenario", constants.DefaultScenarioPreset)
	v.SetDefault("policy", constants.PolicyStatic)
	v.SetDefault("threshold", constants.DefaultThreshold)
	v.SetDefault("fixedCosts.staff", constants.DefaultFixedStaff)
	v.SetDefault("fixedCosts.backOffice", constants.DefaultFixedBackOffice)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r. Empty input
// yields the defaults.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when no scenario file is given.
func Default() *Configuration {
	return &Configuration{
		Scenario:  constants.DefaultScenarioPreset,
		Policy:    constants.PolicyStatic,
		Threshold: constants.DefaultThreshold,
		FixedCosts: FixedCosts{
			Staff:      constants.DefaultFixedStaff,
			BackOffice: constants.DefaultFixedBackOffice,
		},
	}
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.normalize(v.IsSet("position.restrictedFunds") && !v.IsSet("position.totalFunds"))
	return &configuration, nil
}

// normalize tidies decoded values. When deriveTotal is set, total funds are
// computed from unrestricted reserves plus restricted funds, zero included.
func (c *Configuration) normalize(deriveTotal bool) {
	c.Policy = strings.ToLower(strings.TrimSpace(c.Policy))
	c.Scenario = strings.ToLower(strings.TrimSpace(c.Scenario))
	c.Output.Format = strings.TrimSpace(c.Output.Format)

	if deriveTotal {
		c.Position.TotalFunds = c.Position.UnrestrictedReserves + c.Position.RestrictedFunds
	}

	for i := range c.CostChanges {
		c.CostChanges[i].Month = strings.TrimSpace(c.CostChanges[i].Month)
	}
	for i := range c.ReserveDeposits {
		c.ReserveDeposits[i].Month = strings.TrimSpace(c.ReserveDeposits[i].Month)
	}
	for i := range c.SpecialProjects {
		c.SpecialProjects[i].Month = strings.TrimSpace(c.SpecialProjects[i].Month)
	}
}

// RestrictedFunds returns total funds less unrestricted reserves.
func (c *Configuration) RestrictedFunds() float64 {
	return c.Position.TotalFunds - c.Position.UnrestrictedReserves
}

// ProbabilityTable returns the scenario preset's weights with the configured
// per-cluster overrides applied on top.
func (c *Configuration) ProbabilityTable() (clusters.Table, error) {
	name := c.Scenario
	if name == "" {
		name = constants.DefaultScenarioPreset
	}
	preset, err := clusters.Preset(name)
	if err != nil {
		return nil, err
	}

	overrides := make(clusters.Table, len(c.Probabilities))
	for _, w := range c.Probabilities {
		overrides[w.Cluster] = w.Weight
	}
	return preset.With(overrides), nil
}

// Toggles returns the opportunity switches keyed by name. When a name is
// listed more than once the last entry wins.
func (c *Configuration) Toggles() map[string]bool {
	toggles := make(map[string]bool, len(c.Opportunities))
	for _, t := range c.Opportunities {
		toggles[t.Name] = t.Active
	}
	return toggles
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	scenario := validation.ScenarioConfig{
		Scenario:             c.Scenario,
		Policy:               c.Policy,
		Threshold:            c.Threshold,
		UnrestrictedReserves: c.Position.UnrestrictedReserves,
		TotalFunds:           c.Position.TotalFunds,
	}
	for _, w := range c.Probabilities {
		scenario.Weights = append(scenario.Weights, validation.WeightConfig{Cluster: w.Cluster, Weight: w.Weight})
	}
	for _, change := range c.CostChanges {
		scenario.CostChanges = append(scenario.CostChanges, change.Month)
	}
	for _, deposit := range c.ReserveDeposits {
		scenario.ReserveDeposits = append(scenario.ReserveDeposits, deposit.Month)
	}
	for _, special := range c.SpecialProjects {
		scenario.SpecialProjects = append(scenario.SpecialProjects, special.Month)
	}

	validator := validation.ConfigValidator{Scenario: scenario}
	return validator.ValidateAll()
}
