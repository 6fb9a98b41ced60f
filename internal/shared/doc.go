// Package shared holds helpers used across the gradesheet packages.
// Test fixtures and log capture live in the testutil subpackage.
package shared
