// Package session provides Redis-backed session persistence and a compact binary
// session encoding for the lifecycle handler.
//
// # Binary encoding
//
// Sessions are stored in Redis as a small versioned binary record:
// version, length-prefixed session id, last activity (epoch milliseconds,
// big endian) and a flags byte. Decoding an unknown version fails instead of
// guessing.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations), the [MemoryStore] and the
// [Session] model. It does NOT decide whether a session is expired and does
// not write audit records; those responsibilities belong to the handler.
//
// # What this package must NOT do
//
//   - Import goSession or auditlog (no upward imports).
//   - Apply expiry policy of its own (no key TTLs are set on refresh).
package session
