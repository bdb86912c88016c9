// Package store keeps the history of sectxt runs in SQLite.
//
// Every check or sign run is recorded with the canonical document it
// produced, the resolved expiration, the signing key and the diagnostics,
// so that "sectxt history" can list past runs, print an old document and
// show what changed between the last two runs of a file.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// database is a single file under the XDG data directory and the
// CGO-free driver keeps cross-compilation trivial.
package store
