package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "gradesheet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/gradesheet.log"`
}

// RateLimitConfig contains upload rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"10"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// ReportConfig controls what a run produces
type ReportConfig struct {
	// ABCID is the placeholder written to every student record.
	ABCID     string `yaml:"abc_id" envconfig:"ABC_ID" default:"1234"`
	Format    string `yaml:"format" envconfig:"FORMAT" default:"json"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"out"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"gradesheet"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/gradesheet.log",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
		},
		Report: ReportConfig{
			ABCID:     "1234",
			Format:    FormatJSON,
			OutputDir: "out",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
		},
	}
}

// Load reads .env, the YAML file named by GRADESHEET_CONFIG (or
// gradesheet.yaml when it exists) and the environment, in increasing
// order of precedence.
func Load() (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	path := os.Getenv(ConfigFileEnv)
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	return LoadFrom(path)
}

// LoadFrom loads the YAML file at path, if path is not empty, and applies
// environment overrides on top.
func LoadFrom(path string) (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg := envCfg
	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).WithContext("path", path)
		}
		cfg = mergeConfigs(*fileCfg, envCfg, *Default())
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return &cfg, nil
}

// loadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.NewConfigError("failed to load env file", err).WithContext("path", path)
	}
	return nil
}

// loadFromFile loads configuration from YAML file. Keys the file omits
// keep their default values.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pick returns env when it was changed from the default, else file.
func pick[T comparable](env, file, def T) T {
	if env != def {
		return env
	}
	return file
}

// mergeConfigs merges file config with env config (env takes precedence
// wherever it differs from the default)
func mergeConfigs(file, env, def Config) Config {
	var c Config

	c.Server.Host = pick(env.Server.Host, file.Server.Host, def.Server.Host)
	c.Server.Port = pick(env.Server.Port, file.Server.Port, def.Server.Port)
	c.Server.ReadTimeout = pick(env.Server.ReadTimeout, file.Server.ReadTimeout, def.Server.ReadTimeout)
	c.Server.WriteTimeout = pick(env.Server.WriteTimeout, file.Server.WriteTimeout, def.Server.WriteTimeout)
	c.Server.IdleTimeout = pick(env.Server.IdleTimeout, file.Server.IdleTimeout, def.Server.IdleTimeout)
	c.Server.ShutdownTimeout = pick(env.Server.ShutdownTimeout, file.Server.ShutdownTimeout, def.Server.ShutdownTimeout)
	c.Server.RequestTimeout = pick(env.Server.RequestTimeout, file.Server.RequestTimeout, def.Server.RequestTimeout)
	c.Server.MaxUploadBytes = pick(env.Server.MaxUploadBytes, file.Server.MaxUploadBytes, def.Server.MaxUploadBytes)

	c.Logging.Level = pick(env.Logging.Level, file.Logging.Level, def.Logging.Level)
	c.Logging.Format = pick(env.Logging.Format, file.Logging.Format, def.Logging.Format)
	c.Logging.Output = pick(env.Logging.Output, file.Logging.Output, def.Logging.Output)
	c.Logging.FilePath = pick(env.Logging.FilePath, file.Logging.FilePath, def.Logging.FilePath)

	c.RateLimit.Enabled = pick(env.RateLimit.Enabled, file.RateLimit.Enabled, def.RateLimit.Enabled)
	c.RateLimit.RPS = pick(env.RateLimit.RPS, file.RateLimit.RPS, def.RateLimit.RPS)
	c.RateLimit.Burst = pick(env.RateLimit.Burst, file.RateLimit.Burst, def.RateLimit.Burst)

	c.Report.ABCID = pick(env.Report.ABCID, file.Report.ABCID, def.Report.ABCID)
	c.Report.Format = pick(env.Report.Format, file.Report.Format, def.Report.Format)
	c.Report.OutputDir = pick(env.Report.OutputDir, file.Report.OutputDir, def.Report.OutputDir)

	c.Telemetry.ServiceName = pick(env.Telemetry.ServiceName, file.Telemetry.ServiceName, def.Telemetry.ServiceName)
	c.Telemetry.Environment = pick(env.Telemetry.Environment, file.Telemetry.Environment, def.Telemetry.Environment)
	c.Telemetry.TraceExporter = pick(env.Telemetry.TraceExporter, file.Telemetry.TraceExporter, def.Telemetry.TraceExporter)
	c.Telemetry.MetricExporter = pick(env.Telemetry.MetricExporter, file.Telemetry.MetricExporter, def.Telemetry.MetricExporter)
	c.Telemetry.SampleRatio = pick(env.Telemetry.SampleRatio, file.Telemetry.SampleRatio, def.Telemetry.SampleRatio)

	return c
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console":
	case "file", "both":
		if c.Logging.FilePath == "" {
			return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
		}
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	if !slices.Contains(ReportFormats, c.Report.Format) {
		return fmt.Errorf("invalid report format %q, want one of %v", c.Report.Format, ReportFormats)
	}

	if c.Telemetry.TraceExporter != "stdout" && c.Telemetry.TraceExporter != "none" {
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}
	if c.Telemetry.MetricExporter != "prometheus" && c.Telemetry.MetricExporter != "none" {
		return fmt.Errorf("unsupported metric exporter: %s", c.Telemetry.MetricExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be between 0 and 1")
	}

	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
