// Package middleware exposes an HTTP adapter that runs the session lifecycle
// for every request carrying a session token.
//
// # Touch
//
// [Touch] reads the Authorization header, calls
// Handler.HandleAccessTokenWithResult, and only forwards requests whose
// session was refreshed. The result is available to downstream handlers via
// [ResultFromContext].
//
// Status mapping:
//
//   - missing or invalid token, unknown session, expired session: 401
//   - store or audit log failure: 503
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Handler calls. It does not
// parse tokens or access Redis itself.
package middleware
