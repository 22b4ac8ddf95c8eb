// Package log builds the structured logger used by memefetch commands.
//
// Logs are written with log/slog's text handler so they stay greppable and
// separate from the run summary, which commands print to standard output.
package log
