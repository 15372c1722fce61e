package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	return NewExtractor(cat)
}

func TestFindRequiredSkills(t *testing.T) {
	ex := newDefaultExtractor(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "no known skills",
			text: "Looking for a friendly colleague",
			want: []string{},
		},
		{
			name: "multi-word suppresses its words",
			text: "We need REST API experience",
			want: []string{"rest api"},
		},
		{
			name: "punctuation joined phrase",
			text: "Knowledge of REST-API design",
			want: []string{"rest api"},
		},
		{
			name: "catalog order not text order",
			text: "Docker, Flask and Python",
			want: []string{"python", "flask", "docker"},
		},
		{
			name: "symbols kept in tokens",
			text: "C++ / C# developers, some Java",
			want: []string{"java", "c++", "c#"},
		},
		{
			name: "single letter c only as its own token",
			text: "Programming in C and Go",
			want: []string{"c"},
		},
		{
			name: "synonym expansion",
			text: "Strong JS and py skills",
			want: []string{"python", "javascript"},
		},
		{
			name: "synonym to multi-word skill",
			text: "pandas, sklearn",
			want: []string{"pandas", "scikit learn"},
		},
		{
			name: "repeated mentions counted once",
			text: "Postgres or PostgreSQL, postgres again",
			want: []string{"postgresql"},
		},
		{
			name: "whole token match only",
			text: "gitlab pipelines",
			want: []string{"gitlab"},
		},
		{
			name: "several multi-word skills",
			text: "Data analysis and machine learning with SQL",
			want: []string{"sql", "machine learning", "data analysis"},
		},
		{
			name: "non ascii text",
			text: "Requisiti: esperienza con Python e Docker è richiesta",
			want: []string{"python", "docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.FindRequiredSkills(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindRequiredSkills_NoDuplicateNormalizedForms(t *testing.T) {
	ex := newDefaultExtractor(t)
	got := ex.FindRequiredSkills("python py PYTHON js javascript rest api rest api")

	seen := make(map[string]bool)
	for _, s := range got {
		n := ex.Normalize(s)
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
	}
	assert.Equal(t, []string{"python", "javascript", "rest api"}, got)
}

func TestRemoveOverlaps(t *testing.T) {
	ex := newDefaultExtractor(t)

	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{
			name:       "empty",
			candidates: nil,
			want:       []string{},
		},
		{
			name:       "drops covered single words",
			candidates: []string{"api", "rest api", "python", "rest"},
			want:       []string{"rest api", "python"},
		},
		{
			name:       "keeps multi-word skills",
			candidates: []string{"machine learning", "data analysis"},
			want:       []string{"machine learning", "data analysis"},
		},
		{
			name:       "dedup by normalized form keeps first spelling",
			candidates: []string{"Python", "python", "py"},
			want:       []string{"Python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.RemoveOverlaps(tt.candidates))
		})
	}
}

func TestExtractor_CustomCatalog(t *testing.T) {
	cat, err := NewCatalog([]string{"message queues", "go", "queues"}, map[string]string{"golang": "go"})
	require.NoError(t, err)
	ex := NewExtractor(cat)

	assert.Equal(t, []string{"message queues", "go"}, ex.FindRequiredSkills("Golang services with message queues"))
	assert.Equal(t, []string{"queues"}, ex.FindRequiredSkills("job queues"))
}
