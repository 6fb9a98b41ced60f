// Package services holds the application services behind the HTTP
// handlers and the CLI.
//
// GradeSheetService accepts an Upload, reads it into a table and runs the
// grade sheet pipeline, rendering the result through the caller's
// renderer. HealthService answers the health, readiness and liveness
// probes.
package services
