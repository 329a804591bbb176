// Package config loads, normalizes, and validates cerebro configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: the mountpoint, data and trigger directories, logging,
// notification settings, and the per-module polling sections.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
