// Package history persists metric entry transitions to SQLite so past
// values survive daemon restarts and can be queried from the CLI.
package history
