// Package types provides type definitions for structured data shared by the job-matcher packages.
package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is the outcome of comparing one CV against one job posting.
// Scores are in [0, 100] and rounded to two decimals. Slices are never nil.
type MatchResult struct {
	FinalScore     float64  `json:"final_score"`
	Matching       []string `json:"matching"`
	Missing        []string `json:"missing"`
	TFIDFScore     float64  `json:"tfidf_score"`
	SkillScore     float64  `json:"skill_score"`
	RequiredSkills []string `json:"required_skills"`

	// Diagnostics: the skill lists that were scored and whether the whole
	// posting was used because no section yielded any skill.
	RequiredSection []string `json:"required_section"`
	NiceSection     []string `json:"nice_section"`
	UsedFallback    bool     `json:"used_fallback"`
}

// AnalysisRecord is a stored analysis with its inputs.
type AnalysisRecord struct {
	ID         uuid.UUID   `json:"id"`
	JobText    string      `json:"job_text"`
	JobURL     string      `json:"job_url,omitempty"`
	CVText     string      `json:"cv_text"`
	UserSkills []string    `json:"user_skills"`
	Result     MatchResult `json:"result"`
	CreatedAt  time.Time   `json:"created_at"`
}
