package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/schemas"
	embedded "github.com/jonathan/job-matcher/schemas"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	names := embedded.Names()
	require.ElementsMatch(t, []string{
		embedded.AnalysisJob,
		embedded.AnalysisOutcome,
		embedded.Catalog,
		embedded.MatchResult,
	}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			data, err := embedded.Read(name)
			require.NoError(t, err)

			var schemaObj map[string]any
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON")

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Equal(t, "object", schemaObj["type"])
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestSchemaFiles_Compile(t *testing.T) {
	for _, name := range embedded.Names() {
		t.Run(name, func(t *testing.T) {
			// Any structural error surfaces as a SchemaLoadError.
			err := schemas.ValidateDocument(name, []byte(`{}`))
			var loadErr *schemas.SchemaLoadError
			assert.NotErrorAs(t, err, &loadErr)
		})
	}
}

func TestAnalysisOutcome_StatusRequiresPayload(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"completed", `{"job_id": "6f1c1e7a-2f4b-4c55-9d8e-0a1b2c3d4e5f", "status": "completed", "result": {}, "timestamp": "2026-01-02T15:04:05Z"}`, false},
		{"failed", `{"job_id": "6f1c1e7a-2f4b-4c55-9d8e-0a1b2c3d4e5f", "status": "failed", "error": "boom", "timestamp": "2026-01-02T15:04:05Z"}`, false},
		{"completed without result", `{"job_id": "6f1c1e7a-2f4b-4c55-9d8e-0a1b2c3d4e5f", "status": "completed", "timestamp": "2026-01-02T15:04:05Z"}`, true},
		{"failed without error", `{"job_id": "6f1c1e7a-2f4b-4c55-9d8e-0a1b2c3d4e5f", "status": "failed", "timestamp": "2026-01-02T15:04:05Z"}`, true},
		{"unknown status", `{"job_id": "6f1c1e7a-2f4b-4c55-9d8e-0a1b2c3d4e5f", "status": "queued", "timestamp": "2026-01-02T15:04:05Z"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schemas.ValidateDocument(embedded.AnalysisOutcome, []byte(tt.doc))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
