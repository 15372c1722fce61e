package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/observability"
	"github.com/jonathan/job-matcher/internal/schemas"
	"github.com/jonathan/job-matcher/internal/skills"
	embedded "github.com/jonathan/job-matcher/schemas"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate skill catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills of a catalog in matching order",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a YAML skill catalog for structural and ordering problems",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

var (
	catalogPath string
	catalogJSON bool
)

func init() {
	catalogListCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a YAML skill catalog (default: built-in)")
	catalogListCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print skills and synonyms as JSON")

	catalogCmd.AddCommand(catalogListCmd, catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	_, catalog, err := newAnalyzer(config.Config{Catalog: catalogPath})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalogJSON {
		return writeJSON(out, map[string]any{
			"skills":   catalog.Skills(),
			"synonyms": catalog.Synonyms(),
		})
	}

	if verbose {
		observability.NewPrinter(out).PrintCatalog(catalog)
	}
	for _, s := range catalog.Skills() {
		fmt.Fprintln(out, s)
	}
	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	if err := validateCatalogFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid skill catalog\n", args[0])
	return nil
}

// validateCatalogFile checks the document shape against the catalog schema,
// then builds the catalog to report normalization and ordering problems.
func validateCatalogFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := schemas.ValidateValue(embedded.Catalog, doc); err != nil {
		return err
	}

	if _, err := skills.LoadCatalogFile(path); err != nil {
		return err
	}
	return nil
}
