// Package goSession provides session-lifecycle bookkeeping against a
// key-value store: fetch a session, decide whether it has expired, and either
// retire it or refresh its activity timestamp, writing an audit entry in
// either case.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Handler], [Builder], [Config]
// and the error kinds. The decision-and-persist orchestration lives in
// internal/flows; persistence lives in session and auditlog.
//
// # Timeout unit
//
// Session timestamps are epoch milliseconds. The SESSION_TIMEOUT environment
// value is expressed in seconds (default 86400, i.e. 24h) and is held as a
// time.Duration in [SessionConfig.Timeout].
//
// # Concurrency
//
// One HandleSession call performs one fetch, then at most one delete or
// update and one audit append, strictly in that order. Concurrent calls for
// the same session id are not coordinated.
package goSession
