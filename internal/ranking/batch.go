package ranking

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-matcher/internal/types"
)

// JobPosting is one posting to rank.
type JobPosting struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Text   string `json:"-"`
}

// RankedMatch is a posting with its match result and 1-based rank.
type RankedMatch struct {
	Rank    int               `json:"rank"`
	Posting JobPosting        `json:"posting"`
	Result  types.MatchResult `json:"result"`
}

// AnalyzeBatch analyzes cvText against each posting concurrently and returns
// the matches ordered by final score, best first. Postings with equal scores
// keep their input order. It stops early when ctx is cancelled.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, cvText string, postings []JobPosting, userSkills []string) ([]RankedMatch, error) {
	results := make([]RankedMatch, len(postings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, posting := range postings {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("analysis of posting %q cancelled: %w", posting.ID, err)
			}
			// Each slot is written by exactly one goroutine.
			results[i] = RankedMatch{
				Posting: posting,
				Result:  a.Analyze(cvText, posting.Text, userSkills),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.FinalScore > results[j].Result.FinalScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}
