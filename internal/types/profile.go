package types

import "time"

// Profile is the single candidate profile the analyses run against.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Skill is one entry of the candidate's skill list.
type Skill struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SkillNames returns the names of skills in order.
func SkillNames(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}
