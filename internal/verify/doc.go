// Package verify submits verification prompts to the oracle and caches the
// verdicts.
//
// Verdicts are keyed by the hex SHA-256 of the exact prompt text. Lookups try
// an in-memory LRU first and the persistent verdictstore second; on a miss the
// oracle is called once per key even when several runs ask at the same time.
// Oracle failures come back as a textual verdict marked Failed and are never
// cached, so a later retry reaches the oracle again.
package verify
