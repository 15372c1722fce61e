package ranking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/parsing"
	"github.com/jonathan/job-matcher/internal/skills"
)

func newDefaultAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	cat, err := skills.DefaultCatalog()
	require.NoError(t, err)
	a, err := NewAnalyzer(cat, opts...)
	require.NoError(t, err)
	return a
}

func TestAnalyze_EndToEnd(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze(
		"python flask developer",
		"Requisiti: python, flask. Nice to have: docker",
		[]string{"python", "flask"},
	)

	assert.Equal(t, 80.0, result.SkillScore)
	assert.Equal(t, []string{"python", "flask"}, result.Matching)
	assert.Equal(t, []string{"docker"}, result.Missing)
	assert.Equal(t, []string{"python", "flask", "docker"}, result.RequiredSkills)
	assert.Equal(t, []string{"python", "flask"}, result.RequiredSection)
	assert.Equal(t, []string{"docker"}, result.NiceSection)
	assert.False(t, result.UsedFallback)

	assert.InDelta(t, 29.11, result.TFIDFScore, 0.01)
	assert.InDelta(t, 0.70*80+0.30*result.TFIDFScore, result.FinalScore, 0.01)
}

func TestAnalyze_ScoresBoundedSections(t *testing.T) {
	a := newDefaultAnalyzer(t)
	jobText := "Requirements: python. Plus: docker. Required: java"

	// Unbounded, the required section runs to the end of the posting and
	// repeats every nice-to-have skill.
	extractor := skills.NewExtractor(skills.MustDefaultCatalog())
	overlapping := parsing.SplitSections(jobText)
	assert.Equal(t, []string{"python", "java", "docker"}, extractor.FindRequiredSkills(overlapping.Required))
	assert.Equal(t, []string{"java", "docker"}, extractor.FindRequiredSkills(overlapping.Nice))

	result := a.Analyze("python developer", jobText, []string{"python"})

	assert.Equal(t, []string{"python"}, result.RequiredSection)
	assert.Equal(t, []string{"java", "docker"}, result.NiceSection)
	assert.Equal(t, []string{"python"}, result.Matching)
	assert.Equal(t, []string{"java", "docker"}, result.Missing)
	assert.Equal(t, []string{"python", "java", "docker"}, result.RequiredSkills)
	// 2 of 4 weighted points; the overlapping sections would give 2 of 8.
	assert.Equal(t, 50.0, result.SkillScore)
	assert.False(t, result.UsedFallback)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze("", "", nil)

	assert.Equal(t, 0.0, result.FinalScore)
	assert.Equal(t, 0.0, result.TFIDFScore)
	assert.Equal(t, 0.0, result.SkillScore)
	assert.Equal(t, []string{}, result.Matching)
	assert.Equal(t, []string{}, result.Missing)
	assert.Equal(t, []string{}, result.RequiredSkills)
	assert.NotNil(t, result.RequiredSection)
	assert.NotNil(t, result.NiceSection)
}

func TestAnalyze_NoMarkerFallback(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze("", "Looking for a great python developer", nil)

	assert.True(t, result.UsedFallback)
	assert.Equal(t, []string{"python"}, result.RequiredSection)
	assert.Equal(t, []string{}, result.NiceSection)
	assert.Equal(t, []string{"python"}, result.Missing)
	assert.Equal(t, 0.0, result.SkillScore)
	assert.Equal(t, 0.0, result.FinalScore)
}

func TestAnalyze_FallbackWhenSectionsHaveNoSkills(t *testing.T) {
	a := newDefaultAnalyzer(t)

	// The required section exists but names no catalog skill.
	result := a.Analyze("", "We use Docker daily. Requirements: good communication", []string{"docker"})

	assert.True(t, result.UsedFallback)
	assert.Equal(t, []string{"docker"}, result.Matching)
	assert.Equal(t, 100.0, result.SkillScore)
}

func TestAnalyze_NiceOnly(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze("", "Team player. Gradito: Kubernetes and AWS", []string{"kubernetes"})

	assert.Equal(t, []string{}, result.RequiredSection)
	assert.Equal(t, []string{"kubernetes", "aws"}, result.NiceSection)
	assert.Equal(t, 50.0, result.SkillScore)
}

func TestAnalyze_UserSkillsNormalized(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze("", "Requirements: JavaScript, PostgreSQL, REST API", []string{"JS", " postgres ", "Rest-API"})

	assert.Equal(t, []string{"javascript", "postgresql", "rest api"}, result.Matching)
	assert.Empty(t, result.Missing)
	assert.Equal(t, 100.0, result.SkillScore)
}

func TestAnalyze_NoSkillsUsesTextScore(t *testing.T) {
	a := newDefaultAnalyzer(t)

	result := a.Analyze("we value teamwork", "We value teamwork", nil)

	assert.Equal(t, []string{}, result.RequiredSkills)
	assert.Equal(t, 0.0, result.SkillScore)
	assert.Equal(t, result.TFIDFScore, result.FinalScore)
	assert.InDelta(t, 100, result.FinalScore, 1e-9)
}

func TestAnalyze_ScoresWithinBounds(t *testing.T) {
	a := newDefaultAnalyzer(t)

	jobs := []string{
		"",
		"Requirements: Python, Java. Plus: AWS",
		"must have docker kubernetes linux, nice-to-have gcp",
		"opzionale: scrum; obbligatori: git, sql",
		"!!!",
	}
	cvs := []string{"", "python java aws", "docker"}
	userSkills := [][]string{nil, {"python"}, {"docker", "git", "sql", "gcp"}}

	for _, job := range jobs {
		for _, cv := range cvs {
			for _, us := range userSkills {
				r := a.Analyze(cv, job, us)
				for _, score := range []float64{r.FinalScore, r.TFIDFScore, r.SkillScore} {
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 100.0)
				}
				assert.Equal(t, round2(r.FinalScore), r.FinalScore)
			}
		}
	}
}

func TestAnalyze_CustomWeights(t *testing.T) {
	a := newDefaultAnalyzer(t, WithWeights(Weights{Required: 1, Nice: 1, SkillBlend: 0.5, TextBlend: 0.5}))

	result := a.Analyze("", "Requisiti: python, flask. Nice to have: docker", []string{"python", "flask"})

	assert.Equal(t, 66.67, result.SkillScore)
	assert.InDelta(t, 0.5*result.SkillScore, result.FinalScore, 0.01)
}

func TestAnalyze_CustomSplitter(t *testing.T) {
	a := newDefaultAnalyzer(t, WithSplitter(parsing.Splitter{
		RequiredMarkers: []string{"you bring"},
		NiceMarkers:     []string{"bonus"},
	}))

	result := a.Analyze("", "You bring: Go and SQL. Bonus: Rust, AWS", []string{"sql"})

	assert.Equal(t, []string{"sql"}, result.RequiredSection)
	assert.Equal(t, []string{"aws"}, result.NiceSection)
	assert.Equal(t, 66.67, result.SkillScore)
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	a := newDefaultAnalyzer(t)
	want := a.Analyze("python", "Requirements: python, docker", []string{"python"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := a.Analyze("python", "Requirements: python, docker", []string{"python"})
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestNewAnalyzer_Errors(t *testing.T) {
	_, err := NewAnalyzer(nil)
	assert.Error(t, err)

	cat := skills.MustDefaultCatalog()
	_, err = NewAnalyzer(cat, WithWeights(Weights{Required: 2, Nice: 1, SkillBlend: 0.8, TextBlend: 0.3}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{name: "defaults", weights: DefaultWeights()},
		{name: "text only", weights: Weights{Required: 1, Nice: 1, SkillBlend: 0, TextBlend: 1}},
		{name: "zero required", weights: Weights{Required: 0, Nice: 1, SkillBlend: 0.7, TextBlend: 0.3}, wantErr: true},
		{name: "negative nice", weights: Weights{Required: 2, Nice: -1, SkillBlend: 0.7, TextBlend: 0.3}, wantErr: true},
		{name: "blend out of range", weights: Weights{Required: 2, Nice: 1, SkillBlend: 1.5, TextBlend: -0.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCVText(t *testing.T) {
	assert.Equal(t, "Backend dev python docker", CVText("Backend dev", []string{"python", "docker"}))
	assert.Equal(t, " ", CVText("", nil))
}
