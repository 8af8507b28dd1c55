// Package oracle talks to an OpenAI-compatible chat completion endpoint
// (OpenRouter by default) that judges whether news content is genuine.
//
// The client retries rate limits, server errors and empty completions with
// capped exponential backoff, honours Retry-After, and tolerates providers
// that answer with the streaming or legacy completion schema. Every failure
// returned to callers carries the services.ErrOracle marker.
package oracle
