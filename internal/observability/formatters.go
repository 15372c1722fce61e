// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// skillList renders up to limit skills on one line.
func skillList(items []string, limit int) string {
	if len(items) == 0 {
		return "(none)"
	}
	shown := items[:min(len(items), limit)]
	s := strings.Join(shown, ", ")
	if len(items) > limit {
		s += fmt.Sprintf(" (+%d more)", len(items)-limit)
	}
	return s
}

// PrintMatchResult outputs the scores and skill breakdown of one analysis.
func (p *Printer) PrintMatchResult(result *types.MatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Final score:  %6.2f\n", result.FinalScore))
	sb.WriteString(fmt.Sprintf("Skill score:  %6.2f\n", result.SkillScore))
	sb.WriteString(fmt.Sprintf("Text score:   %6.2f\n", result.TFIDFScore))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Matching: %s\n", skillList(result.Matching, maxItemsToShow)))
	sb.WriteString(fmt.Sprintf("Missing:  %s\n", skillList(result.Missing, maxItemsToShow)))

	if result.UsedFallback {
		sb.WriteString("\nNo section markers matched; scored the whole posting")
	} else {
		sb.WriteString(fmt.Sprintf("\nRequired section: %d skills\n", len(result.RequiredSection)))
		sb.WriteString(fmt.Sprintf("Nice section:     %d skills", len(result.NiceSection)))
	}

	p.printBox("MATCH RESULT", sb.String())
}

// PrintRankedMatches outputs the top postings of a batch analysis.
func (p *Printer) PrintRankedMatches(matches []ranking.RankedMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings ranked: %d\n\n", len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", m.Rank, m.Posting.ID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (skills %.2f, text %.2f)\n",
			m.Result.FinalScore, m.Result.SkillScore, m.Result.TFIDFScore))
		if len(m.Result.Missing) > 0 {
			sb.WriteString(fmt.Sprintf("    Missing: %s\n", skillList(m.Result.Missing, 3)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(matches)-maxItemsToShow))
	}

	p.printBox("RANKED POSTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCatalog outputs a summary of a skill catalog.
func (p *Printer) PrintCatalog(catalog *skills.Catalog) {
	if catalog == nil {
		return
	}

	multi := 0
	for _, phrase := range catalog.Phrases() {
		if phrase.IsMultiWord() {
			multi++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skills:      %d\n", catalog.Len()))
	sb.WriteString(fmt.Sprintf("Multi-word:  %d\n", multi))
	sb.WriteString(fmt.Sprintf("Synonyms:    %d", len(catalog.Synonyms())))

	p.printBox("SKILL CATALOG", sb.String())
}
