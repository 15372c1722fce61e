// Package skills holds the curated skill catalog and extracts known skills from text.
package skills

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-matcher/internal/parsing"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Phrase is one catalog entry, possibly multi-word.
type Phrase struct {
	Canonical  string `json:"canonical"`
	Normalized string `json:"normalized"`
}

// IsMultiWord reports whether the normalized phrase spans several tokens.
func (p Phrase) IsMultiWord() bool {
	return strings.Contains(p.Normalized, " ")
}

// Words returns the tokens of the normalized phrase.
func (p Phrase) Words() []string {
	return parsing.Tokens(p.Normalized)
}

// Catalog is an ordered, immutable list of known skill phrases plus the
// synonym table used to normalize text before matching.
type Catalog struct {
	phrases    []Phrase
	synonyms   map[string]string
	normalizer *parsing.Normalizer
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Skills   []string          `yaml:"skills"`
	Synonyms map[string]string `yaml:"synonyms"`
}

// NewCatalog builds and validates a catalog. Skill order is preserved.
// All problems found are reported together in a *CatalogError.
func NewCatalog(skillList []string, synonyms map[string]string) (*Catalog, error) {
	normalizer := parsing.NewNormalizer(synonyms)
	var problems []string

	// Synonym keys must be single tokens and targets must survive
	// normalization unchanged, otherwise Normalize would not be idempotent.
	plain := parsing.NewNormalizer(nil)
	table := make(map[string]string, len(synonyms))
	for alt, canonical := range synonyms {
		key := strings.ToLower(strings.TrimSpace(alt))
		if key == "" || plain.Normalize(key) != key || strings.Contains(key, " ") {
			problems = append(problems, fmt.Sprintf("synonym key %q is not a single normalized token", alt))
			continue
		}
		if canonical == "" || normalizer.Normalize(canonical) != canonical {
			problems = append(problems, fmt.Sprintf("synonym %q -> %q: target is not in normalized form", alt, canonical))
			continue
		}
		table[key] = canonical
	}

	phrases := make([]Phrase, 0, len(skillList))
	seen := make(map[string]int, len(skillList))
	for i, s := range skillList {
		norm := normalizer.Normalize(s)
		if norm == "" {
			problems = append(problems, fmt.Sprintf("skill #%d %q is empty after normalization", i+1, s))
			continue
		}
		if prev, dup := seen[norm]; dup {
			problems = append(problems, fmt.Sprintf("skill %q duplicates %q", s, phrases[prev].Canonical))
			continue
		}
		seen[norm] = len(phrases)
		phrases = append(phrases, Phrase{Canonical: s, Normalized: norm})
	}

	problems = append(problems, orderingProblems(phrases)...)

	if len(problems) > 0 {
		return nil, &CatalogError{Problems: problems}
	}

	return &Catalog{
		phrases:    phrases,
		synonyms:   table,
		normalizer: normalizer,
	}, nil
}

// orderingProblems reports single-word entries listed before a multi-word
// entry that contains them.
func orderingProblems(phrases []Phrase) []string {
	var problems []string
	position := make(map[string]int, len(phrases))
	for i, p := range phrases {
		if !p.IsMultiWord() {
			position[p.Normalized] = i
		}
	}
	for j, multi := range phrases {
		if !multi.IsMultiWord() {
			continue
		}
		for _, w := range multi.Words() {
			if i, ok := position[w]; ok && i < j {
				problems = append(problems, fmt.Sprintf("single-word skill %q must be listed after %q", phrases[i].Canonical, multi.Canonical))
			}
		}
	}
	return problems
}

// LoadCatalog parses a YAML catalog document.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(f.Skills) == 0 {
		return nil, &CatalogError{Problems: []string{"catalog has no skills"}}
	}
	return NewCatalog(f.Skills, f.Synonyms)
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	cat, err := LoadCatalog(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the built-in catalog, parsed once per process.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	})
	return defaultCatalog, defaultErr
}

// MustDefaultCatalog is DefaultCatalog for initialization code; it panics on error.
func MustDefaultCatalog() *Catalog {
	cat, err := DefaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("built-in skill catalog is invalid: %v", err))
	}
	return cat
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	return LoadCatalogFile(path)
}

// Phrases returns a copy of the catalog entries in catalog order.
func (c *Catalog) Phrases() []Phrase {
	out := make([]Phrase, len(c.phrases))
	copy(out, c.phrases)
	return out
}

// Skills returns the canonical skill strings in catalog order.
func (c *Catalog) Skills() []string {
	out := make([]string, len(c.phrases))
	for i, p := range c.phrases {
		out[i] = p.Canonical
	}
	return out
}

// Synonyms returns a copy of the synonym table.
func (c *Catalog) Synonyms() map[string]string {
	out := make(map[string]string, len(c.synonyms))
	for k, v := range c.synonyms {
		out[k] = v
	}
	return out
}

// Normalizer returns the normalizer bound to this catalog's synonyms.
func (c *Catalog) Normalizer() *parsing.Normalizer {
	return c.normalizer
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int {
	return len(c.phrases)
}
