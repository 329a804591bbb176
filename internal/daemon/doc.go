// Package daemon coordinates the monitoring runtime: it owns the module
// registry, routes observed metric changes into the history store and the
// trigger engine, keeps the FUSE tree mounted, and enforces single-instance
// execution through a lock file.
package daemon
