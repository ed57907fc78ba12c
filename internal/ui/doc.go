// Package ui implements the `archify tui` terminal interface on bubbletea's Elm architecture.
//
// The views form one workflow:
//  1. [PlaylistListView]: browse and filter playlists, with the age of any existing archive
//  2. [TrackListView]: preview the tracks that will be written
//  3. [ConfirmView]: confirm the archive path
//  4. [ArchiveView]: progress while archiving one playlist or all of them
//  5. [ResultView]: the written path, or a summary with failures
//
// [Model] receives data through the [Msg] union. Bulk archives report progress over a channel that the model
// drains one update per command, so the engine never waits on rendering.
package ui
