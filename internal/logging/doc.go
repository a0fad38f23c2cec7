// Package logging wraps log/slog with the attribute helpers and field-name
// conventions used across mapwatch. All components log through *slog.Logger
// values constructed here so console and JSON output stay consistent.
package logging
