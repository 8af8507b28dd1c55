// Package verdictstore persists oracle verdicts keyed by the SHA-256 of the
// exact prompt text, so a repeated check never pays for a second oracle call.
//
// Two backends implement Store: SQLite (modernc.org/sqlite, the default, kept
// under the cache directory) and PostgreSQL (pgx) for deployments where several
// API servers share one cache. Failed verifications are never stored.
package verdictstore
