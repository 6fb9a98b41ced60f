package config

// Application constants
const (
	AppName    = "gradesheet"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. GRADESHEET_SERVER_PORT.
	EnvPrefix = "GRADESHEET"

	// ConfigFileEnv names the variable that points at a YAML config file.
	ConfigFileEnv = "GRADESHEET_CONFIG"
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "gradesheet.yaml"
	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"
)

// Report output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ReportFormats lists the accepted report formats.
var ReportFormats = []string{FormatJSON, FormatCSV, FormatXLSX}
