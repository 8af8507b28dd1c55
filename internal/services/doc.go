// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and HTTP correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures so
//     the pipeline, CLI, and HTTP API report them consistently.
//
// Subpackages wrap external engines: the fact-checking oracle (oracle) and the
// speech-to-text runner (whisperx).
package services
