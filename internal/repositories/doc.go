// Package repositories implements SQLite persistence for the archive history.
//
// [ArchiveRunRepository] stores one row per archive file written. The history is write-mostly: it backs the
// history command and is never consulted when fetching playlists, so it is not a cache of API data.
//
// Sequence numbers provide stable ordering independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
