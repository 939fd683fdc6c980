// Package services defines shared utilities consumed by the tracker, the
// session store, and the daemon API.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation, not-found, invalid state, conflict) for callers and give
//     the API layer a uniform status-code mapping.
//   - Context helpers that stamp request identifiers and the acting operator
//     for logging and correlation.
//
// Use these helpers when wiring new session logic so error handling and
// observability stay uniform across local and remote call paths.
package services
