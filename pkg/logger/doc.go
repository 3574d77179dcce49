// Package logger provides structured logging for the Jira corpus pipelines.
//
// It wraps zerolog behind a small Logger interface so components receive
// their logger at construction instead of reaching into package globals.
// When a log file is configured, output goes to both the console and the
// file, which keeps multi-hour fetch runs auditable.
package logger
