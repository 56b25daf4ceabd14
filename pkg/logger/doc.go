// Package logger builds the application's structured logger on top of
// log/slog: JSON output in production, human-readable text elsewhere.
package logger
