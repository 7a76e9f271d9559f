package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/output"
	"github.com/iwvelando/pipeline-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	riskStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

type forecastOptions struct {
	configPath     string
	workbook       string
	outputFormat   string
	policy         string
	scenario       string
	comparePresets bool
}

func forecastCmd() *cobra.Command {
	opts := forecastOptions{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Compute the reserve forecast for a pipeline workbook",
		Long: `Parse the pipeline workbook, apply the scenario configuration and print the
monthly ledger with its risk summary.

When the default scenario file is missing the built-in defaults are used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForecast(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to scenario configuration file")
	cmd.Flags().StringVar(&opts.workbook, "workbook", "", "pipeline workbook (.xlsx), overrides the scenario's workbook")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "reserve policy override: static, compounding")
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "probability preset override: conservative, realistic, optimistic")
	cmd.Flags().BoolVar(&opts.comparePresets, "compare-presets", false, "run every probability preset side by side")

	return cmd
}

func runForecast(cmd *cobra.Command, opts forecastOptions) error {
	conf, err := loadScenario(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	logger, err := initializeLogger(conf.Logging, logLevelFlag(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := applyOverrides(conf, opts); err != nil {
		return err
	}

	outputFormat := conf.Output.Format
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.forecast"),
		)
	}

	if conf.Workbook == "" {
		return errors.New("no pipeline workbook given, use --workbook or set workbook in the scenario file")
	}

	opportunities, err := pipeline.NewParser(logger).ParseFile(conf.Workbook)
	if err != nil {
		return fmt.Errorf("failed to parse pipeline workbook: %w", err)
	}
	logger.Info(fmt.Sprintf("parsed %d opportunities", len(opportunities)),
		zap.String("op", "main.forecast"),
		zap.String("workbook", conf.Workbook),
	)

	var results []forecast.Forecast
	if opts.comparePresets {
		results, err = forecast.ComparePresets(logger, *conf, opportunities)
	} else {
		var result forecast.Forecast
		result, err = forecast.GetForecast(logger, *conf, opportunities)
		results = append(results, result)
	}
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	reports := make([]output.Report, 0, len(results))
	for _, result := range results {
		report := output.NewReport(result, conf.Threshold)
		report.Warnings = warnings
		reports = append(reports, report)
	}

	return render(cmd.OutOrStdout(), outputFormat, reports)
}

// loadScenario reads the scenario file. A missing file falls back to the
// defaults unless the path was given explicitly.
func loadScenario(path string, explicit bool) (*config.Configuration, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	return conf, nil
}

func applyOverrides(conf *config.Configuration, opts forecastOptions) error {
	if workbook := strings.TrimSpace(opts.workbook); workbook != "" {
		conf.Workbook = workbook
	}
	if format := strings.TrimSpace(opts.outputFormat); format != "" {
		conf.Output.Format = format
	}
	if scenario := strings.TrimSpace(opts.scenario); scenario != "" {
		conf.Scenario = strings.ToLower(scenario)
	}
	if policy := strings.TrimSpace(opts.policy); policy != "" {
		parsed, err := forecast.ParsePolicy(policy)
		if err != nil {
			return err
		}
		conf.Policy = parsed.String()
	}
	return nil
}

func render(w io.Writer, outputFormat string, reports []output.Report) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		output.CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, reports)
	default:
		fmt.Fprintln(w, titleStyle.Render("Pipeline forecast Jan_2026 to Jun_2027"))
		fmt.Fprintln(w)
		output.PrettyFormat(w, reports)
		for _, report := range reports {
			fmt.Fprintln(w, riskBanner(report))
		}
	}
	return nil
}

func riskBanner(report output.Report) string {
	name := report.Forecast.Name
	if report.Summary.AtRisk {
		if report.Summary.FirstBreach == constants.NoBreach {
			return riskStyle.Render(fmt.Sprintf("%s: opening unrestricted reserves are below threshold", name))
		}
		return riskStyle.Render(fmt.Sprintf("%s: unrestricted reserves fall below threshold from %s",
			name, report.Summary.FirstBreach))
	}
	return okStyle.Render(fmt.Sprintf("%s: unrestricted reserves stay above threshold", name))
}
