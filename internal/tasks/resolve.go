package tasks

import (
	"cmp"
	"slices"
	"strings"

	"github.com/desertthunder/archify/internal/models"
	"github.com/desertthunder/archify/internal/shared"
)

const (
	// DefaultThreshold is the minimum [Score] for a name to be suggested.
	DefaultThreshold = 80

	// MaxSuggestions caps the candidates returned for an unresolved name.
	MaxSuggestions = 3
)

// OutcomeKind reports how a query resolved.
type OutcomeKind int

const (
	NotFound OutcomeKind = iota
	Found
	Suggested
)

func (k OutcomeKind) String() string {
	switch k {
	case Found:
		return "found"
	case Suggested:
		return "suggested"
	default:
		return "not_found"
	}
}

// MatchCandidate is a playlist name that scored at or above the threshold.
type MatchCandidate struct {
	Name  string
	Score int
}

// Outcome is the result of resolving a free-text query against a listing.
type Outcome struct {
	Kind       OutcomeKind
	Query      string
	Playlist   models.Playlist  // set when Kind is Found
	Candidates []MatchCandidate // set when Kind is Suggested
}

// Suggestions returns the candidate names, best first.
func (o Outcome) Suggestions() []string {
	names := make([]string, len(o.Candidates))
	for i, c := range o.Candidates {
		names[i] = c.Name
	}
	return names
}

// Resolve maps query to a playlist.
//
// The first playlist whose normalized name equals the normalized query, ignoring case, is Found.
// Otherwise each distinct name is scored and up to [MaxSuggestions] names at or above threshold are
// returned as Suggested, best first with ties in listing order. Fuzzy candidates are never picked
// automatically.
func Resolve(query string, playlists []models.Playlist, threshold int) Outcome {
	outcome := Outcome{Kind: NotFound, Query: query}

	normalized := shared.NormalizeName(query)
	if normalized == "" {
		return outcome
	}

	for _, p := range playlists {
		if strings.EqualFold(shared.NormalizeName(p.Name), normalized) {
			outcome.Kind = Found
			outcome.Playlist = p
			return outcome
		}
	}

	seen := make(map[string]bool, len(playlists))
	var candidates []MatchCandidate
	for _, p := range playlists {
		name := shared.NormalizeName(p.Name)
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		if score := Score(normalized, name); score >= threshold {
			candidates = append(candidates, MatchCandidate{Name: p.Name, Score: score})
		}
	}

	if len(candidates) == 0 {
		return outcome
	}

	slices.SortStableFunc(candidates, func(a, b MatchCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}

	outcome.Kind = Suggested
	outcome.Candidates = candidates
	return outcome
}
