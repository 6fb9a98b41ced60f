package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gradesheet/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_DefaultsMatchTags(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"GRADESHEET_SERVER_PORT":        "9090",
				"GRADESHEET_REPORT_FORMAT":      "xlsx",
				"GRADESHEET_REPORT_ABC_ID":      "ABC-0001",
				"GRADESHEET_RATE_LIMIT_ENABLED": "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, FormatXLSX, cfg.Report.Format)
				assert.Equal(t, "ABC-0001", cfg.Report.ABCID)
				assert.False(t, cfg.RateLimit.Enabled)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 7070
  request_timeout: 5s
logging:
  level: debug
report:
  format: csv
  output_dir: reports
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, FormatCSV, cfg.Report.Format)
				assert.Equal(t, "reports", cfg.Report.OutputDir)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"GRADESHEET_SERVER_PORT": "6060"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"GRADESHEET_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown report format",
			env:     map[string]string{"GRADESHEET_REPORT_FORMAT": "pdf"},
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			file:    "telemetry:\n  trace_exporter: otlp\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
		{
			name:    "malformed duration in env",
			env:     map[string]string{"GRADESHEET_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, "gradesheet.yaml", tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	path := writeFile(t, "custom.yaml", "report:\n  abc_id: FROM-FILE\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FROM-FILE", cfg.Report.ABCID)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", "GRADESHEET_TEST_ONLY=loaded\n")
	t.Setenv("GRADESHEET_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("GRADESHEET_TEST_ONLY"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("GRADESHEET_TEST_ONLY"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }},
		{"rate limit without rps", func(c *Config) { c.RateLimit.RPS = 0 }},
		{"bad sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 2 }},
		{"bad metric exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }},
	}

	require.NoError(t, Default().validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
