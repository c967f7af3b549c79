package openings

import "time"

// Opening is a job description candidates are screened against.
type Opening struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	RequiredSkills  []string  `json:"required_skills"`
	PreferredSkills []string  `json:"preferred_skills"`
	ExperienceYears int       `json:"experience_years"`
	EducationLevel  string    `json:"education_level,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	IsActive        bool      `json:"is_active"`
}
