// Package logging configures structured logging for georesolve.
//
// Loggers are log/slog loggers. New builds one from explicit options;
// NewFromConfig derives options from application config and tees output to
// stdout and a log file under the configured log directory. The console
// handler renders compact single-line records; the json handler emits
// machine-readable output for log shipping.
package logging
