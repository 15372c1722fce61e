package types

import "github.com/go-playground/validator/v10"

// UpdateProfileRequest replaces the profile fields.
type UpdateProfileRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Summary string `json:"summary" validate:"max=20000"`
}

// CreateSkillRequest adds a skill to the profile.
type CreateSkillRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AnalyzeRequest analyzes a posting against the stored profile.
// Either JobText or JobURL must be set; JobText wins when both are.
type AnalyzeRequest struct {
	JobText string `json:"job_text" validate:"required_without=JobURL,max=200000"`
	JobURL  string `json:"job_url" validate:"omitempty,url"`
}

// MatchRequest runs a stateless analysis on caller supplied inputs.
type MatchRequest struct {
	CVText     string   `json:"cv_text" validate:"max=200000"`
	JobText    string   `json:"job_text" validate:"max=200000"`
	UserSkills []string `json:"user_skills" validate:"max=500,dive,max=100"`
}

// Validate validates the UpdateProfileRequest using the validator.
func (r *UpdateProfileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateSkillRequest using the validator.
func (r *CreateSkillRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
