// Package logging assembles structured slog loggers used across vidcheck.
//
// Console output goes through tint with colour only when attached to a
// terminal; JSON output uses compact ts/level/msg keys. A log directory, when
// configured, receives a JSON copy of every record. Context helpers tag lines
// with run IDs, pipeline states, and HTTP correlation IDs.
package logging
