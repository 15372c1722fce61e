package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/schemas"
	embedded "github.com/jonathan/job-matcher/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON document against a schema",
	Long: `Validate a JSON document against a JSON Schema.

--schema is either the name of a built-in schema (for example
match_result.schema.json) or a path to a schema file.`,
	RunE: runValidate,
}

var (
	schemaArg string
	jsonPath  string
)

func init() {
	validateCmd.Flags().StringVar(&schemaArg, "schema", "", "Built-in schema name or schema file path (required)")
	validateCmd.Flags().StringVar(&jsonPath, "json", "", "Path to the JSON file to validate (required)")

	_ = validateCmd.MarkFlagRequired("schema")
	_ = validateCmd.MarkFlagRequired("json")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if err := validateDocument(schemaArg, jsonPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid against %s\n", jsonPath, schemaArg)
	return nil
}

func validateDocument(schema, path string) error {
	if !slices.Contains(embedded.Names(), schema) {
		return schemas.ValidateJSON(schema, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("JSON file not found: %w", err)
	}
	return schemas.ValidateDocument(schema, data)
}
