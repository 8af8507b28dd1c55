// Package preflight provides readiness checks for the services and
// filesystem paths vidcheck depends on.
//
// These checks run in two contexts:
//   - "vidcheck deps" prints every result next to the binary table.
//   - "vidcheck serve" runs RunAll at startup and refuses to listen when the
//     work directory is unusable.
//
// The oracle check is skipped when no key is configured.
package preflight
