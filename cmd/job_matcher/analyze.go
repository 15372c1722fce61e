package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/observability"
	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/schemas"
	"github.com/jonathan/job-matcher/internal/types"
	embedded "github.com/jonathan/job-matcher/schemas"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a CV against one job posting",
	Long: `Score a CV against a job posting read from a file or URL.

The CV may be plain text, Markdown, HTML, PDF or DOCX. Skills given with
--skills are the candidate's declared skills; matching and missing skills are
computed from them.`,
	RunE: runAnalyze,
}

var (
	analyzeCV      string
	analyzeCVText  string
	analyzeJob     string
	analyzeJobURL  string
	analyzeSkills  []string
	analyzeCatalog string
	analyzeBrowser bool
	analyzeJSON    bool
	analyzeOut     string
	analyzeSave    bool
	analyzeProfile bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCV, "cv", "", "Path to CV document")
	analyzeCmd.Flags().StringVar(&analyzeCVText, "cv-text", "", "CV text, instead of --cv")
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job posting file")
	analyzeCmd.Flags().StringVarP(&analyzeJobURL, "job-url", "u", "", "URL to fetch the job posting from")
	analyzeCmd.Flags().StringSliceVarP(&analyzeSkills, "skills", "s", nil, "Candidate skills, comma separated")
	analyzeCmd.Flags().StringVar(&analyzeCatalog, "catalog", "", "Path to a YAML skill catalog (default: built-in)")
	analyzeCmd.Flags().BoolVar(&analyzeBrowser, "use-browser", false, "Fall back to a headless browser for JavaScript job boards")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the JSON result to this file")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the analysis (DATABASE_URL or SQLITE_PATH)")
	analyzeCmd.Flags().BoolVar(&analyzeProfile, "from-profile", false, "Build the CV and skills from the stored profile, like the API does")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger(verbose)

	cfg, err := mergeConfig(config.Config{
		Job:        analyzeJob,
		JobURL:     analyzeJobURL,
		CV:         analyzeCV,
		Catalog:    analyzeCatalog,
		Skills:     analyzeSkills,
		UseBrowser: analyzeBrowser,
	})
	if err != nil {
		return err
	}

	analyzer, _, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	userSkills := append([]string{}, cfg.Skills...)
	var cvText string
	if analyzeProfile {
		summary, names, err := loadProfile(cmd, cfg)
		if err != nil {
			return err
		}
		cvText = ranking.CVText(summary, names)
		userSkills = append(userSkills, names...)
	} else {
		cvText, err = readCV(cfg.CV, analyzeCVText)
		if err != nil {
			return err
		}
	}

	jobText, err := readJob(ctx, cfg.Job, cfg.JobURL, newFetcher(cfg.UseBrowser, logger))
	if err != nil {
		return err
	}

	result := analyzer.Analyze(cvText, jobText, userSkills)
	logger.Debug("analysis complete",
		"cv_chars", len(cvText),
		"job_chars", len(jobText),
		"required", len(result.RequiredSection),
		"nice", len(result.NiceSection),
		"fallback", result.UsedFallback,
	)

	if analyzeSave {
		id, err := saveAnalysis(cmd, cfg, &types.AnalysisRecord{
			JobText:    jobText,
			JobURL:     cfg.JobURL,
			CVText:     cvText,
			UserSkills: userSkills,
			Result:     result,
		})
		if err != nil {
			return err
		}
		logger.Info("analysis stored", "id", id)
	}

	if analyzeOut != "" || analyzeJSON {
		if err := schemas.ValidateValue(embedded.MatchResult, result); err != nil {
			return fmt.Errorf("result does not match schema: %w", err)
		}
	}
	if analyzeOut != "" {
		if err := writeJSONFile(analyzeOut, result); err != nil {
			return err
		}
		logger.Info("result written", "path", analyzeOut)
	}
	if analyzeJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintMatchResult(&result)
	return nil
}

func saveAnalysis(cmd *cobra.Command, cfg config.Config, rec *types.AnalysisRecord) (string, error) {
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveAnalysis(cmd.Context(), rec); err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return rec.ID.String(), nil
}

// loadProfile returns the stored profile summary and skill names.
func loadProfile(cmd *cobra.Command, cfg config.Config) (string, []string, error) {
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = store.Close() }()

	profile, err := store.GetProfile(cmd.Context())
	if err != nil {
		return "", nil, fmt.Errorf("failed to load profile: %w", err)
	}
	list, err := store.ListSkills(cmd.Context())
	if err != nil {
		return "", nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return profile.Summary, types.SkillNames(list), nil
}
