package matches

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// SkillMatch breaks the skill score down against the job's required list.
type SkillMatch struct {
	Score    float64
	Matching []string
	Missing  []string
}

// MatchSkills compares candidate skills against the required list with
// case-insensitive exact matching. A job without required skills scores on
// whether the candidate lists anything at all.
func MatchSkills(candidate, required []string) SkillMatch {
	if len(required) == 0 {
		score := 50.0
		if len(candidate) > 0 {
			score = 70.0
		}
		return SkillMatch{Score: score, Matching: []string{}, Missing: []string{}}
	}
	if len(candidate) == 0 {
		return SkillMatch{Score: 0, Matching: []string{}, Missing: append([]string{}, required...)}
	}

	have := make(map[string]struct{}, len(candidate))
	for _, s := range candidate {
		have[strings.ToLower(s)] = struct{}{}
	}
	matching := []string{}
	missing := []string{}
	for _, s := range required {
		if _, ok := have[strings.ToLower(s)]; ok {
			matching = append(matching, s)
		} else {
			missing = append(missing, s)
		}
	}
	score := round2(float64(len(matching)) / float64(len(required)) * 100)
	return SkillMatch{Score: score, Matching: matching, Missing: missing}
}

var resumeYearsPattern = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s+(?:of\s+)?(?:total\s+)?experience`)

// EstimateYears guesses total experience: a stated "N years of experience"
// in the resume wins, otherwise two years per listed position.
func EstimateYears(experience json.RawMessage, resumeText string) int {
	years := countEntries(experience) * 2
	if m := resumeYearsPattern.FindStringSubmatch(resumeText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			years = n
		}
	}
	return years
}

func countEntries(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0
	}
	return len(entries)
}

// MatchExperience scores estimated against required years in tiers.
func MatchExperience(estimatedYears, requiredYears int) float64 {
	if requiredYears == 0 {
		return 80.0
	}
	if estimatedYears == 0 {
		return 0.0
	}
	est, req := float64(estimatedYears), float64(requiredYears)
	switch {
	case est >= req*1.5:
		return 100.0
	case est >= req:
		return 90.0
	case est >= req*0.75:
		return 70.0
	case est >= req*0.5:
		return 50.0
	default:
		return 30.0
	}
}

// Score builds a match report for a candidate/job pair. Skills carry 70%
// of the weight and experience 30%, with a small bonus for broad skill
// lists; semantic resume analysis is not performed here, so that component
// stays zero.
func Score(profile Profile, req Requirement) Result {
	skills := MatchSkills(profile.Skills, req.RequiredSkills)
	years := EstimateYears(profile.Experience, profile.ResumeText)
	expScore := MatchExperience(years, req.ExperienceYears)

	overall := skills.Score*0.7 + expScore*0.3
	if len(profile.Skills) > 10 {
		overall += 5
	} else if len(profile.Skills) > 5 {
		overall += 2
	}
	overall = round2(math.Min(100, overall))

	return Result{
		OverallScore:         overall,
		SkillMatchScore:      skills.Score,
		ExperienceMatchScore: expScore,
		SemanticScore:        0,
		MatchingSkills:       skills.Matching,
		MissingSkills:        skills.Missing,
		Strengths:            strengths(skills, expScore, years),
		Concerns:             concerns(skills, expScore),
		RecommendedQuestions: questions(skills, years, req.ExperienceYears),
	}
}

func strengths(skills SkillMatch, expScore float64, years int) []string {
	var out []string
	if skills.Score >= 70 {
		out = append(out, fmt.Sprintf("Strong skill match (%d matching skills)", len(skills.Matching)))
	}
	if expScore >= 80 {
		out = append(out, fmt.Sprintf("Excellent experience (~%d years)", years))
	}
	if len(out) == 0 {
		out = append(out, "Candidate shows potential with appropriate development")
	}
	return out
}

func concerns(skills SkillMatch, expScore float64) []string {
	var out []string
	if skills.Score < 50 {
		out = append(out, fmt.Sprintf("Missing %d key skills", len(skills.Missing)))
	}
	if expScore < 60 {
		out = append(out, "May lack sufficient experience for this role")
	}
	if len(out) == 0 {
		out = append(out, "No major concerns identified")
	}
	return out
}

func questions(skills SkillMatch, years, requiredYears int) []string {
	var out []string
	if len(skills.Missing) > 0 {
		top := skills.Missing
		if len(top) > 3 {
			top = top[:3]
		}
		out = append(out, fmt.Sprintf("How would you approach learning %s?", strings.Join(top, ", ")))
	}
	if years < requiredYears {
		out = append(out, "Can you describe a challenging project where you exceeded expectations despite limited experience?")
	}
	out = append(out,
		"Can you describe your experience with the key technologies listed in your resume?",
		"What projects have you worked on that are most similar to this role?",
		"How do you stay updated with industry trends and new technologies?",
	)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
