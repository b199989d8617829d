// Package logger builds configured slog loggers with automatic context
// attribute injection. Register extractors (tenant.LoggerExtractor,
// clientip.LoggerExtractor) and every record logged with a request
// context carries the store id and caller address without manual
// plumbing.
package logger
