// Package flows contains pure-function orchestrators for Handler operations.
//
// Each flow function accepts a typed dependency struct and returns results
// without side-effects beyond those dependencies. Failures come back as
// classified [*Failure] values; the root package maps them onto its public
// error kinds.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the session store and the audit log.
// They do NOT own either resource; ownership stays with the Handler.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency interfaces.
//   - Retry, reorder or batch store and audit-log calls.
package flows
