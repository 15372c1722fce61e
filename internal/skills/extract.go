package skills

import (
	"strings"

	"github.com/jonathan/job-matcher/internal/parsing"
)

// Extractor finds catalog skills mentioned in free text.
// It is read-only after construction and safe for concurrent use.
type Extractor struct {
	catalog    *Catalog
	normalizer *parsing.Normalizer
}

// NewExtractor creates an Extractor over the given catalog.
func NewExtractor(catalog *Catalog) *Extractor {
	return &Extractor{
		catalog:    catalog,
		normalizer: catalog.Normalizer(),
	}
}

// Normalize normalizes s with the catalog's synonym table.
func (e *Extractor) Normalize(s string) string {
	return e.normalizer.Normalize(s)
}

// FindRequiredSkills returns the catalog skills present in text, in catalog
// order, using the catalog's original spelling.
//
// Multi-word skills match as a contiguous substring of the normalized text,
// single words match whole tokens. Duplicates are dropped by normalized form,
// and single words covered by a matched multi-word skill are suppressed.
func (e *Extractor) FindRequiredSkills(text string) []string {
	norm := e.normalizer.Normalize(text)
	if norm == "" {
		return []string{}
	}
	tokens := parsing.TokenSet(norm)

	var found []string
	for _, p := range e.catalog.phrases {
		if p.IsMultiWord() {
			if strings.Contains(norm, p.Normalized) {
				found = append(found, p.Canonical)
			}
			continue
		}
		if _, ok := tokens[p.Normalized]; ok {
			found = append(found, p.Canonical)
		}
	}

	return e.RemoveOverlaps(e.dedup(found))
}

// RemoveOverlaps drops single-word skills whose normalized form is a word of
// any multi-word skill in the list, e.g. "rest" and "api" next to "rest api".
// Multi-word skills are always kept. The result is deduplicated by normalized
// form with first-occurrence order preserved.
func (e *Extractor) RemoveOverlaps(candidates []string) []string {
	norms := make([]string, len(candidates))
	wordsInMulti := make(map[string]struct{})
	for i, c := range candidates {
		norms[i] = e.normalizer.Normalize(c)
		if strings.Contains(norms[i], " ") {
			for _, w := range parsing.Tokens(norms[i]) {
				wordsInMulti[w] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		n := norms[i]
		if !strings.Contains(n, " ") {
			if _, covered := wordsInMulti[n]; covered {
				continue
			}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, c)
	}
	return out
}

// dedup removes entries with an already seen normalized form.
func (e *Extractor) dedup(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		key := e.normalizer.Normalize(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
