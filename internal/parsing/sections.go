package parsing

import "strings"

// DefaultRequiredMarkers lists phrases that introduce the mandatory part of a posting.
// Order matters: the first phrase of the list found anywhere in the text wins.
var DefaultRequiredMarkers = []string{
	"requisiti",
	"requirements",
	"must have",
	"must-have",
	"obbligatori",
	"required",
}

// DefaultNiceMarkers lists phrases that introduce the optional part of a posting.
var DefaultNiceMarkers = []string{
	"nice to have",
	"nice-to-have",
	"gradito",
	"preferibile",
	"plus",
	"opzionale",
}

// Sections holds the two heuristic segments of a job posting.
// Either may be empty and they may overlap.
type Sections struct {
	Required string `json:"required"`
	Nice     string `json:"nice"`

	// Offsets into the lowercased text, -1 when no marker matched.
	requiredMarkerAt, requiredStart int
	niceMarkerAt, niceStart         int
}

// Bounded returns the sections with each one cut where the other section's
// marker begins, so "Requirements: X. Nice to have: Y" yields X and Y
// instead of a required section that also contains Y.
func (s Sections) Bounded() Sections {
	out := s
	if s.requiredMarkerAt >= 0 && s.niceMarkerAt >= s.requiredStart {
		out.Required = s.Required[:s.niceMarkerAt-s.requiredStart]
	}
	if s.niceMarkerAt >= 0 && s.requiredMarkerAt >= s.niceStart {
		out.Nice = s.Nice[:s.requiredMarkerAt-s.niceStart]
	}
	return out
}

// Splitter divides job text on marker phrases.
type Splitter struct {
	RequiredMarkers []string
	NiceMarkers     []string
}

// DefaultSplitter returns a Splitter using the built-in marker lists.
func DefaultSplitter() Splitter {
	return Splitter{
		RequiredMarkers: DefaultRequiredMarkers,
		NiceMarkers:     DefaultNiceMarkers,
	}
}

// Split lowercases jobText and returns, for each marker list independently,
// everything after the first occurrence of the first listed marker present.
// Markers are tried in list order, not in order of position in the text.
func (s Splitter) Split(jobText string) Sections {
	text := strings.ToLower(jobText)
	var out Sections
	out.Required, out.requiredMarkerAt, out.requiredStart = after(text, s.RequiredMarkers)
	out.Nice, out.niceMarkerAt, out.niceStart = after(text, s.NiceMarkers)
	return out
}

// SplitSections splits jobText with the default markers.
func SplitSections(jobText string) Sections {
	return DefaultSplitter().Split(jobText)
}

// after returns the text following the first listed marker present, along
// with the marker offset and the offset where the section starts.
func after(text string, markers []string) (string, int, int) {
	for _, m := range markers {
		if m == "" {
			continue
		}
		if i := strings.Index(text, m); i >= 0 {
			return text[i+len(m):], i, i + len(m)
		}
	}
	return "", -1, -1
}
