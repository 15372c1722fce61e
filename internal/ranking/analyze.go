// Package ranking scores a CV against job postings by blending weighted skill
// coverage with lexical TF-IDF similarity.
package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/job-matcher/internal/parsing"
	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

// Weights controls how skills are counted and how the two scores are blended.
type Weights struct {
	Required   float64 `json:"required"`
	Nice       float64 `json:"nice"`
	SkillBlend float64 `json:"skill_blend"`
	TextBlend  float64 `json:"text_blend"`
}

// DefaultWeights returns required=2, nice=1 and a 70/30 skill/text blend.
func DefaultWeights() Weights {
	return Weights{
		Required:   2,
		Nice:       1,
		SkillBlend: 0.70,
		TextBlend:  0.30,
	}
}

// Validate checks that skill weights are positive and the blend factors are
// in [0, 1] and sum to 1.
func (w Weights) Validate() error {
	if w.Required <= 0 || w.Nice <= 0 {
		return fmt.Errorf("skill weights must be positive (required=%g, nice=%g)", w.Required, w.Nice)
	}
	if w.SkillBlend < 0 || w.SkillBlend > 1 || w.TextBlend < 0 || w.TextBlend > 1 {
		return fmt.Errorf("blend factors must be in [0, 1] (skill=%g, text=%g)", w.SkillBlend, w.TextBlend)
	}
	if math.Abs(w.SkillBlend+w.TextBlend-1) > 1e-9 {
		return fmt.Errorf("blend factors must sum to 1, got %g", w.SkillBlend+w.TextBlend)
	}
	return nil
}

// Analyzer runs the match engine. It is immutable after construction and safe
// for concurrent use.
type Analyzer struct {
	extractor  *skills.Extractor
	normalizer *parsing.Normalizer
	splitter   parsing.Splitter
	weights    Weights
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWeights overrides the default weights.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithSplitter overrides the default section markers.
func WithSplitter(s parsing.Splitter) Option {
	return func(a *Analyzer) {
		a.splitter = s
	}
}

// NewAnalyzer creates an Analyzer over the given catalog.
func NewAnalyzer(catalog *skills.Catalog, opts ...Option) (*Analyzer, error) {
	if catalog == nil {
		return nil, fmt.Errorf("skill catalog is required")
	}
	a := &Analyzer{
		extractor:  skills.NewExtractor(catalog),
		normalizer: catalog.Normalizer(),
		splitter:   parsing.DefaultSplitter(),
		weights:    DefaultWeights(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	return a, nil
}

// Weights returns the weights in use.
func (a *Analyzer) Weights() Weights {
	return a.weights
}

// CVText builds the CV document from a profile summary and skill names.
func CVText(summary string, skillNames []string) string {
	return summary + " " + strings.Join(skillNames, " ")
}

// Analyze compares cvText against jobText. userSkills are the candidate's
// declared skills; they match a required skill when their normalized forms
// are equal.
func (a *Analyzer) Analyze(cvText, jobText string, userSkills []string) types.MatchResult {
	tfidf := Similarity(cvText, jobText)

	sections := a.splitter.Split(jobText).Bounded()
	req := []string{}
	nice := []string{}
	if sections.Required != "" {
		req = a.extractor.FindRequiredSkills(sections.Required)
	}
	if sections.Nice != "" {
		nice = a.extractor.FindRequiredSkills(sections.Nice)
	}

	usedFallback := false
	if len(req) == 0 && len(nice) == 0 {
		req = a.extractor.FindRequiredSkills(jobText)
		usedFallback = true
	}

	userNorm := make(map[string]struct{}, len(userSkills))
	for _, s := range userSkills {
		userNorm[a.normalizer.Normalize(s)] = struct{}{}
	}

	var matching, missing []string
	var weightedTotal, weightedMatch float64
	score := func(list []string, weight float64) {
		for _, s := range list {
			weightedTotal += weight
			if _, ok := userNorm[a.normalizer.Normalize(s)]; ok {
				matching = append(matching, s)
				weightedMatch += weight
			} else {
				missing = append(missing, s)
			}
		}
	}
	score(req, a.weights.Required)
	score(nice, a.weights.Nice)

	skillScore := 0.0
	finalScore := tfidf
	if weightedTotal > 0 {
		skillScore = 100 * weightedMatch / weightedTotal
		finalScore = a.weights.SkillBlend*skillScore + a.weights.TextBlend*tfidf
	}

	return types.MatchResult{
		FinalScore:      round2(finalScore),
		Matching:        uniqueInOrder(matching),
		Missing:         uniqueInOrder(missing),
		TFIDFScore:      round2(tfidf),
		SkillScore:      round2(skillScore),
		RequiredSkills:  uniqueInOrder(append(append([]string{}, req...), nice...)),
		RequiredSection: req,
		NiceSection:     nice,
		UsedFallback:    usedFallback,
	}
}

// uniqueInOrder drops repeated strings, keeping the first occurrence.
func uniqueInOrder(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
