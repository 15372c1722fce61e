// Package schemas embeds the JSON Schemas of the job-matcher documents.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	MatchResult     = "match_result.schema.json"
	AnalysisJob     = "analysis_job.schema.json"
	AnalysisOutcome = "analysis_outcome.schema.json"
	Catalog         = "catalog.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the content of the named schema.
func Read(name string) ([]byte, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return data, nil
}

// Names lists the embedded schemas.
func Names() []string {
	entries, _ := files.ReadDir(".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
