// Package parsing turns raw job posting and CV text into comparable token streams
// and splits postings into requirement sections.
package parsing

import (
	"regexp"
	"strings"
)

// nonToken matches every run of characters that cannot be part of a token.
// '+' and '#' are kept so that "c++" and "c#" survive.
var nonToken = regexp.MustCompile(`[^a-z0-9#+]+`)

// Normalizer canonicalizes text into a lowercase, space-separated token stream
// with synonyms substituted per token.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer creates a Normalizer for the given synonym table.
// Keys are matched case-insensitively; the map is copied.
func NewNormalizer(synonyms map[string]string) *Normalizer {
	table := make(map[string]string, len(synonyms))
	for alt, canonical := range synonyms {
		key := strings.ToLower(strings.TrimSpace(alt))
		if key == "" {
			continue
		}
		table[key] = canonical
	}
	return &Normalizer{synonyms: table}
}

// Normalize lowercases text, collapses every run of characters outside
// [a-z0-9#+] to a single space and replaces each token by its synonym.
// Any input, including the empty string, yields a valid result.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonToken.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		if canonical, ok := n.synonyms[w]; ok {
			words[i] = canonical
		}
	}
	return strings.Join(words, " ")
}

// Tokens splits normalized text into its tokens.
func Tokens(normalized string) []string {
	if normalized == "" {
		return []string{}
	}
	return strings.Fields(normalized)
}

// TokenSet returns the distinct tokens of normalized text.
func TokenSet(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		out[t] = struct{}{}
	}
	return out
}
