// package formatter renders playlist tracks as Markdown archive files and manages the archive directory
package formatter

import (
	"fmt"
	"strings"

	"github.com/desertthunder/archify/internal/models"
)

// UnknownArtist stands in for an artist the service returned without a name.
const UnknownArtist = "Unknown Artist"

// FormatTracks renders raw playlist entries as numbered Markdown lines.
//
// Nil entries are skipped and do not consume a number, so positions always run 1..n over the emitted lines.
func FormatTracks(raw []*models.Track) []string {
	lines := make([]string, 0, len(raw))
	position := 0
	for _, track := range raw {
		if track == nil {
			continue
		}
		position++
		lines = append(lines, FormatLine(position, track))
	}
	return lines
}

// FormatLine renders a single track as "<position>. _<name>_ by <artists>".
func FormatLine(position int, track *models.Track) string {
	return fmt.Sprintf("%d. _%s_ by %s", position, track.Name, Artists(track.Artists))
}

// Artists joins artist names with ", ", substituting [UnknownArtist] for empty names.
// An empty list renders as [UnknownArtist].
func Artists(names []string) string {
	if len(names) == 0 {
		return UnknownArtist
	}

	parts := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			name = UnknownArtist
		}
		parts[i] = name
	}
	return strings.Join(parts, ", ")
}

// RenderArchive builds the archive document: a title line, a blank line, then one line per track.
func RenderArchive(name string, lines []string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Song Archive\n\n", name)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
