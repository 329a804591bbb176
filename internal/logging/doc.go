// Package logging assembles the structured slog loggers used across the
// cerebro daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so module and trigger code tags log
// lines with the same field names everywhere. The package also provides a
// no-op logger for tests and wiring code that cannot fail, plus the log
// retention sweep used at daemon startup.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees.
package logging
