// Package timelog persists work sessions and their pause ledger in SQLite.
//
// A session belongs to one operator and moves through active, paused, and
// finished states. Every state transition runs inside a single immediate
// transaction so that the one-active-session-per-operator rule and the
// one-open-pause-per-session rule hold under concurrent requests; both rules
// are additionally backed by partial unique indexes so a racing write fails
// at commit rather than corrupting state.
//
// Timestamps are stored as RFC3339Nano UTC strings and all duration
// arithmetic happens on Unix seconds, truncated toward zero and clamped at
// zero. The store never reads the wall clock itself: callers supply the
// instant a transition happens, which keeps every timestamp written by one
// operation on a single clock. To change the schema, update schema.sql and
// bump schemaVersion.
package timelog
