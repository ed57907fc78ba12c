// Package tasks resolves playlist names and archives playlists with real-time progress reporting.
//
// # Name Resolution
//
// [Resolve] maps free text to a playlist: a case-insensitive match on the NFKC-normalized name wins outright;
// otherwise names scoring at least the threshold under [Score] come back as suggestions. Suggestions are
// only ever shown to the user, never archived.
//
// # Core Operations
//
// [ArchiveEngine] runs every operation sequentially:
//
//  1. [ArchiveEngine.Archive] : one playlist by name
//     - Fetches the listing and resolves the name
//     - Unresolved names return a resolution error with suggestions
//
//  2. [ArchiveEngine.ArchiveBatch] : names from a batch file (see [ReadBatchFile])
//     - Fetches the listing once
//     - Unresolved names are Skipped, failed writes are Failed, and the batch continues
//
//  3. [ArchiveEngine.ArchiveAll] : every playlist in listing order
//
// Each archived playlist is written by [formatter.ArchiveWriter] and, when a [RunRecorder] is configured,
// recorded in the history store.
//
// # Progress Reporting
//
// Batch operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
