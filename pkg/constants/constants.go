// Package constants provides shared constants for the pipeline-forecast application.
package constants

// MonthLabelLayout is the Go time layout of a month label such as "Jan_2026".
// Labels appear in workbook headers, configuration files and output.
const MonthLabelLayout = "Jan_2006"

// Forecast horizon constants
const (
	// HorizonMonths is the fixed length of every forecast.
	HorizonMonths = 18

	// StartYear is the calendar year of forecast month 1.
	StartYear = 2026

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CurrentLabel is the label of the synthetic opening ledger row.
	CurrentLabel = "Current"

	// NoBreach is reported as the first breach month when reserves never drop
	// below the threshold.
	NoBreach = "none"
)

// Well-known pipeline clusters.
const (
	ClusterSecured          = "Secured income"
	ClusterProposals        = "Proposals out for decision"
	ClusterHighLikelihood   = "High likelihood projects in development"
	ClusterMediumLikelihood = "Medium likelihood projects in development"
	ClusterIdeas            = "Ideas at development stage"

	// UnknownCluster is assigned to sheets without a cluster cell.
	UnknownCluster = "Unknown"
)

// Workbook constants
const (
	// WorkbookExtension is the only accepted pipeline file extension.
	WorkbookExtension = ".xlsx"

	// OpportunityNamePrefix prefixes the sheet name when a sheet has no name cell.
	OpportunityNamePrefix = "Opportunity_"
)

// Scenario defaults
const (
	// MaxScheduleEntries caps deposits, cost changes and special costs per
	// scenario; more entries are accepted with a warning.
	MaxScheduleEntries = 4

	// DefaultScenarioPreset is used when a scenario names no preset.
	DefaultScenarioPreset = "realistic"

	DefaultFixedStaff      = 49000.0
	DefaultFixedBackOffice = 12000.0
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 penny)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxProbability is the upper bound of a cluster weight in percent.
	MaxProbability = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "scenario.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultTemplateFile is where the template command writes its workbook.
	DefaultTemplateFile = "pipeline-template.xlsx"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for workbooks (10 MB)
	DefaultMaxUploadSizeBytes int64 = 10 * 1024 * 1024
)

// Reserve policy names
const (
	// PolicyStatic keeps restricted funds fixed and clamps unrecovered staff
	// costs at zero.
	PolicyStatic = "static"

	// PolicyCompounding moves surpluses into restricted funds and deficits out
	// of unrestricted reserves.
	PolicyCompounding = "compounding"

	// DefaultThreshold is the default critical level of unrestricted reserves.
	DefaultThreshold = 143000.0
)
