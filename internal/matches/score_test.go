package matches

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchSkillsExact(t *testing.T) {
	m := MatchSkills([]string{"Go", "SQL", "docker"}, []string{"go", "sql", "kubernetes", "terraform"})
	require.Equal(t, 50.0, m.Score)
	require.Equal(t, []string{"go", "sql"}, m.Matching)
	require.Equal(t, []string{"kubernetes", "terraform"}, m.Missing)
}

func TestMatchSkillsNoRequirement(t *testing.T) {
	require.Equal(t, 70.0, MatchSkills([]string{"go"}, nil).Score)
	require.Equal(t, 50.0, MatchSkills(nil, nil).Score)
}

func TestMatchSkillsEmptyCandidate(t *testing.T) {
	m := MatchSkills(nil, []string{"go", "sql"})
	require.Equal(t, 0.0, m.Score)
	require.Equal(t, []string{"go", "sql"}, m.Missing)
	require.Empty(t, m.Matching)
}

func TestMatchExperienceTiers(t *testing.T) {
	cases := []struct {
		estimated, required int
		want                float64
	}{
		{0, 0, 80},
		{4, 0, 80},
		{0, 3, 0},
		{6, 4, 100},
		{4, 4, 90},
		{3, 4, 70},
		{2, 4, 50},
		{1, 4, 30},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, MatchExperience(tc.estimated, tc.required),
			"estimated=%d required=%d", tc.estimated, tc.required)
	}
}

func TestEstimateYears(t *testing.T) {
	exp := json.RawMessage(`[{"company":"a"},{"company":"b"}]`)
	require.Equal(t, 4, EstimateYears(exp, ""))
	require.Equal(t, 7, EstimateYears(exp, "Seasoned engineer with 7+ years of total experience in backend systems."))
	require.Equal(t, 0, EstimateYears(nil, ""))
	require.Equal(t, 0, EstimateYears(json.RawMessage(`not json`), ""))
}

func TestScoreWeightsAndBonus(t *testing.T) {
	profile := Profile{
		Skills:     []string{"go", "sql"},
		Experience: json.RawMessage(`[{"company":"a"},{"company":"b"}]`),
	}
	req := Requirement{RequiredSkills: []string{"go", "sql"}, ExperienceYears: 4}

	result := Score(profile, req)
	require.Equal(t, 100.0, result.SkillMatchScore)
	require.Equal(t, 90.0, result.ExperienceMatchScore)
	require.Equal(t, 0.0, result.SemanticScore)
	// 100*0.7 + 90*0.3, no bonus for a two-skill list.
	require.Equal(t, 97.0, result.OverallScore)
	require.Equal(t, []string{"go", "sql"}, result.MatchingSkills)
	require.NotEmpty(t, result.Strengths)
	require.Equal(t, []string{"No major concerns identified"}, result.Concerns)
}

func TestScoreBonusIsCapped(t *testing.T) {
	skills := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	profile := Profile{
		Skills:     skills,
		Experience: json.RawMessage(`[{},{},{},{}]`),
	}
	req := Requirement{RequiredSkills: skills[:2], ExperienceYears: 2}

	result := Score(profile, req)
	// 100*0.7 + 100*0.3 + 5 would exceed the scale.
	require.Equal(t, 100.0, result.OverallScore)
}

func TestScoreSurfacesGaps(t *testing.T) {
	profile := Profile{Skills: []string{"php"}}
	req := Requirement{RequiredSkills: []string{"go", "sql", "redis"}, ExperienceYears: 5}

	result := Score(profile, req)
	require.Equal(t, 0.0, result.SkillMatchScore)
	require.Contains(t, result.Concerns[0], "Missing 3 key skills")
	require.Contains(t, result.RecommendedQuestions[0], "go, sql, redis")
	require.LessOrEqual(t, len(result.RecommendedQuestions), 5)
}
