// Package auditlog defines the append-only session audit record and the
// loggers that persist it.
//
// # Components
//
//   - [Entry]: immutable record: session id, epoch-millisecond timestamp, message.
//   - [Logger]: synchronous append interface used by the lifecycle handler.
//   - [RedisLog]: Redis stream backend (XADD), one stream entry per record.
//   - [SQLiteLog]: SQLite table backend.
//   - [JSONWriterLog]: one JSON object per line on any io.Writer.
//
// # Architecture boundaries
//
// Loggers only persist what they are handed. They do NOT decide which
// lifecycle events are recorded and never buffer or drop entries: an Append
// that returns nil has written the entry.
package auditlog
