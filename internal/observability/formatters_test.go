package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

func TestPrintMatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResult(&types.MatchResult{
		FinalScore:      80,
		SkillScore:      83.33,
		TFIDFScore:      72.5,
		Matching:        []string{"python", "flask"},
		Missing:         []string{"docker"},
		RequiredSection: []string{"python", "flask"},
		NiceSection:     []string{"docker"},
	})
	output := buf.String()

	assert.Contains(t, output, "MATCH RESULT")
	assert.Contains(t, output, " 80.00")
	assert.Contains(t, output, " 83.33")
	assert.Contains(t, output, "python, flask")
	assert.Contains(t, output, "docker")
	assert.Contains(t, output, "Required section: 2 skills")
	assert.NotContains(t, output, "whole posting")
}

func TestPrintMatchResult_FallbackAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResult(&types.MatchResult{Matching: []string{}, Missing: []string{}, UsedFallback: true})
	output := buf.String()

	assert.Contains(t, output, "(none)")
	assert.Contains(t, output, "scored the whole posting")
}

func TestPrintMatchResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRankedMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var matches []ranking.RankedMatch
	for i := 1; i <= 7; i++ {
		matches = append(matches, ranking.RankedMatch{
			Rank:    i,
			Posting: ranking.JobPosting{ID: fmt.Sprintf("posting-%d", i)},
			Result: types.MatchResult{
				FinalScore: float64(100 - i*10),
				Missing:    []string{"go", "rust", "sql", "aws"},
			},
		})
	}

	p.PrintRankedMatches(matches)
	output := buf.String()

	assert.Contains(t, output, "RANKED POSTINGS")
	assert.Contains(t, output, "Postings ranked: 7")
	assert.Contains(t, output, "#1  posting-1")
	assert.Contains(t, output, "#5  posting-5")
	assert.NotContains(t, output, "posting-6")
	assert.Contains(t, output, "... and 2 more postings")
	assert.Contains(t, output, "go, rust, sql (+1 more)")
}

func TestPrintRankedMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRankedMatches(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCatalog(t *testing.T) {
	catalog, err := skills.NewCatalog([]string{"python", "machine learning", "go"}, map[string]string{"py": "python"})
	require.NoError(t, err)

	var buf bytes.Buffer
	NewPrinter(&buf).PrintCatalog(catalog)
	output := buf.String()

	assert.Contains(t, output, "SKILL CATALOG")
	assert.Contains(t, output, "Skills:      3")
	assert.Contains(t, output, "Multi-word:  1")
	assert.Contains(t, output, "Synonyms:    1")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth, "line too wide: %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}
