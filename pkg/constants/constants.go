// Package constants provides shared constants for the loan-tracker application.
package constants

// DateLayout is the calendar date format accepted in config files and used
// for display of schedule dates.
const DateLayout = "2006-01-02"

// MonthLayout is the year-month format used when grouping payments by month.
const MonthLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DaysPerMonthApprox converts a duration in days to whole months for
	// display of time saved.
	DaysPerMonthApprox = 30
)

// Termination guards for the iterative algorithms.
const (
	// MaxScheduleMonths bounds amortization schedule generation (100 years).
	MaxScheduleMonths = 1200

	// MaxTotalInterest stops a strategy simulation once accrued interest
	// exceeds this many currency units.
	MaxTotalInterest = 1000000000.0

	// MaxSimulationMonths stops a strategy simulation that makes no progress
	// and accrues no interest.
	MaxSimulationMonths = 12000
)

// Strategy descriptions
const (
	AvalancheName        = "Avalanche Method"
	AvalancheDescription = "Pays off loans with highest interest rate first"
	SnowballName         = "Snowball Method"
	SnowballDescription  = "Pays off loans with lowest balance first"

	// CombinedLoanID and CombinedLoanName identify the synthetic merged loan.
	CombinedLoanID   = "combined"
	CombinedLoanName = "All Loans"

	// MaxAdditionalShare is the share of total minimum payments offered as the
	// upper bound for additional payment input.
	MaxAdditionalShare = 0.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Report selections for the CLI
const (
	ReportSummary    = "summary"
	ReportSchedule   = "schedule"
	ReportStrategies = "strategies"
	ReportImpact     = "impact"
	ReportAll        = "all"
)

// Persistence constants
const (
	// StorageKey is the fixed key under which the portfolio blob is stored.
	StorageKey = "studentLoanTracker"

	// ExportFormatJSON and ExportFormatYAML are the supported interchange formats.
	ExportFormatJSON = "json"
	ExportFormatYAML = "yaml"

	// DefaultStorePath is the default location of the file and sqlite stores.
	DefaultStorePath = "data"

	// DefaultRedisAddress is the default Redis address.
	DefaultRedisAddress = "localhost:6379"

	// DefaultSQLiteFile is the database file name used inside the store path.
	DefaultSQLiteFile = "loan-tracker.db"
)

// Storage backends
const (
	StorageBackendMemory   = "memory"
	StorageBackendFile     = "file"
	StorageBackendSQLite   = "sqlite"
	StorageBackendPostgres = "postgres"
	StorageBackendRedis    = "redis"
)

// Storage codecs
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReminderSchedule is the default cron spec for the reminder job
	DefaultReminderSchedule = "@daily"

	// DefaultReminderLookaheadDays is how far ahead reminders are reported
	DefaultReminderLookaheadDays = 7
)
