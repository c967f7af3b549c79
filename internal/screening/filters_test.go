package screening

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesFilters(t *testing.T) {
	item := BatchItem{
		Skills:          []string{"Go", "Postgres", "Docker"},
		ExperienceYears: 4,
		Location:        "Bangalore, India",
	}

	cases := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty filters pass", Filters{}, true},
		{"skill overlap", Filters{Skills: []string{"go", "kubernetes"}}, true},
		{"no skill overlap", Filters{Skills: []string{"rust"}}, false},
		{"meets min experience", Filters{MinExperience: 3}, true},
		{"below min experience", Filters{MinExperience: 5}, false},
		{"above max experience", Filters{MaxExperience: 3}, false},
		{"location substring", Filters{Locations: []string{"bangalore"}}, true},
		{"location mismatch", Filters{Locations: []string{"Pune"}}, false},
		{"all filters combined", Filters{Skills: []string{"postgres"}, MinExperience: 2, MaxExperience: 10, Locations: []string{"india"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MatchesFilters(item, tc.filters))
		})
	}
}

func TestScoreOrdersByFit(t *testing.T) {
	filters := Filters{Skills: []string{"go", "postgres", "redis"}, MinExperience: 3}

	strong := BatchItem{Skills: []string{"go", "postgres", "redis"}, ExperienceYears: 6}
	partial := BatchItem{Skills: []string{"go"}, ExperienceYears: 1}

	require.Greater(t, Score(strong, filters), Score(partial, filters))
	require.LessOrEqual(t, Score(strong, filters), 100.0)
	require.GreaterOrEqual(t, Score(partial, filters), 0.0)
}

func TestScoreWithoutFiltersRewardsExperience(t *testing.T) {
	seasoned := BatchItem{ExperienceYears: 5}
	fresher := BatchItem{}
	require.Greater(t, Score(seasoned, Filters{}), Score(fresher, Filters{}))
}
