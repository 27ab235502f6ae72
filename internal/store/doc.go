// Package store keeps the history of exported decks in SQLite.
//
// The history lets the deduplicator remember exported deck contents across
// restarts, and backs the `arenadeck state` command. Writes are idempotent:
// recording the same fingerprint twice keeps the first row.
package store
