// Package config loads, normalizes, and validates vidcheck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDCHECK_ORACLE_API_KEY. The Config type centralizes the sampling strides,
// detector thresholds, external tool locations and oracle credentials used by
// the CLI and the HTTP server.
//
// Credentials never fall back to defaults: commands that reach the oracle call
// RequireOracle so a missing key fails at startup rather than mid-run.
package config
