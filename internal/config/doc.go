// Package config loads gradesheet configuration.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults (Default)
//  2. a YAML file: $GRADESHEET_CONFIG, or ./gradesheet.yaml when present
//  3. environment variables, including those loaded from ./.env
//
// Variables are namespaced by section:
//
//	GRADESHEET_SERVER_PORT=8080
//	GRADESHEET_LOGGING_LEVEL=debug
//	GRADESHEET_REPORT_FORMAT=xlsx
//	GRADESHEET_REPORT_ABC_ID=1234
//	GRADESHEET_TELEMETRY_TRACE_EXPORTER=stdout
package config
