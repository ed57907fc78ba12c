// Package models defines the entities that flow through the archive pipeline.
//
//   - [Playlist] : playlist metadata from the streaming service
//   - [Track] : a track name plus its ordered artist names
//   - [Page] : one page of a paginated listing with a "has next" signal
//   - [ArchiveRun] : a persisted record of a written archive file
//
// Playlists and tracks are fetched fresh for every operation and never stored;
// only [ArchiveRun] rows are persisted, by the repositories package.
package models
