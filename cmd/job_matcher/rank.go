package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/ingestion"
	"github.com/jonathan/job-matcher/internal/observability"
	"github.com/jonathan/job-matcher/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank POSTING...",
	Short: "Rank several job postings against one CV",
	Long:  "Score a CV against every posting file given as an argument and print them best match first.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

var (
	rankCV      string
	rankCVText  string
	rankSkills  []string
	rankCatalog string
	rankJSON    bool
)

func init() {
	rankCmd.Flags().StringVar(&rankCV, "cv", "", "Path to CV document")
	rankCmd.Flags().StringVar(&rankCVText, "cv-text", "", "CV text, instead of --cv")
	rankCmd.Flags().StringSliceVarP(&rankSkills, "skills", "s", nil, "Candidate skills, comma separated")
	rankCmd.Flags().StringVar(&rankCatalog, "catalog", "", "Path to a YAML skill catalog (default: built-in)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print the ranking as JSON")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := mergeConfig(config.Config{
		CV:      rankCV,
		Catalog: rankCatalog,
		Skills:  rankSkills,
	})
	if err != nil {
		return err
	}

	analyzer, _, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	cvText, err := readCV(cfg.CV, rankCVText)
	if err != nil {
		return err
	}

	postings, err := readPostings(args)
	if err != nil {
		return err
	}

	userSkills := cfg.Skills
	if userSkills == nil {
		userSkills = []string{}
	}
	ranked, err := analyzer.AnalyzeBatch(cmd.Context(), cvText, postings, userSkills)
	if err != nil {
		return err
	}

	if rankJSON {
		return writeJSON(cmd.OutOrStdout(), ranked)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRankedMatches(ranked)
	return nil
}

// readPostings ingests each path; the posting ID is the file name without
// its extension.
func readPostings(paths []string) ([]ranking.JobPosting, error) {
	postings := make([]ranking.JobPosting, 0, len(paths))
	for _, path := range paths {
		text, _, err := ingestion.IngestFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest posting %s: %w", path, err)
		}
		base := filepath.Base(path)
		postings = append(postings, ranking.JobPosting{
			ID:     strings.TrimSuffix(base, filepath.Ext(base)),
			Source: path,
			Text:   text,
		})
	}
	return postings, nil
}
