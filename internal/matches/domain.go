package matches

import (
	"encoding/json"
	"time"
)

// Result is a stored match report for one candidate/job pair. Scores are
// percentages; the skill lists explain how the skill score was reached.
type Result struct {
	ID                   int64     `json:"id"`
	CandidateID          int64     `json:"candidate_id"`
	JobID                int64     `json:"job_id"`
	OverallScore         float64   `json:"overall_score"`
	SkillMatchScore      float64   `json:"skill_match_score"`
	ExperienceMatchScore float64   `json:"experience_match_score"`
	SemanticScore        float64   `json:"semantic_score"`
	MatchingSkills       []string  `json:"matching_skills"`
	MissingSkills        []string  `json:"missing_skills"`
	Strengths            []string  `json:"strengths"`
	Concerns             []string  `json:"concerns"`
	RecommendedQuestions []string  `json:"recommended_questions"`
	CreatedAt            time.Time `json:"created_at"`
}

// Profile is the candidate material the scorer consumes.
type Profile struct {
	Skills     []string
	Experience json.RawMessage
	ResumeText string
}

// Requirement is the job side of a match.
type Requirement struct {
	RequiredSkills  []string
	ExperienceYears int
}
