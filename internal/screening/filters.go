package screening

import "strings"

// MatchesFilters reports whether an intake record passes the batch filters.
// Empty filter fields pass everything.
func MatchesFilters(item BatchItem, f Filters) bool {
	if len(f.Skills) > 0 {
		have := make(map[string]struct{}, len(item.Skills))
		for _, s := range item.Skills {
			have[strings.ToLower(s)] = struct{}{}
		}
		any := false
		for _, req := range f.Skills {
			if _, ok := have[strings.ToLower(req)]; ok {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if f.MinExperience > 0 && item.ExperienceYears < f.MinExperience {
		return false
	}
	if f.MaxExperience > 0 && item.ExperienceYears > f.MaxExperience {
		return false
	}

	if len(f.Locations) > 0 {
		loc := strings.ToLower(item.Location)
		any := false
		for _, want := range f.Locations {
			w := strings.ToLower(want)
			if strings.Contains(loc, w) || strings.Contains(w, loc) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// Score rates an intake record against the batch filters on a 0-100 scale.
// Skills carry 70% of the weight, experience the remaining 30%, with a
// small bonus for skill-rich profiles.
func Score(item BatchItem, f Filters) float64 {
	skillScore := 100.0
	if len(f.Skills) > 0 {
		have := make(map[string]struct{}, len(item.Skills))
		for _, s := range item.Skills {
			have[strings.ToLower(s)] = struct{}{}
		}
		matched := 0
		for _, req := range f.Skills {
			if _, ok := have[strings.ToLower(req)]; ok {
				matched++
			}
		}
		skillScore = float64(matched) / float64(len(f.Skills)) * 100
	}

	var expScore float64
	switch {
	case f.MinExperience > 0 && item.ExperienceYears >= f.MinExperience:
		expScore = 80 + (item.ExperienceYears-f.MinExperience)*4
		if expScore > 100 {
			expScore = 100
		}
	case f.MinExperience > 0:
		expScore = item.ExperienceYears / f.MinExperience * 70
	case item.ExperienceYears > 0:
		expScore = 70
	default:
		expScore = 50
	}

	score := skillScore*0.7 + expScore*0.3
	if len(item.Skills) > 10 {
		score += 5
	} else if len(item.Skills) > 5 {
		score += 2
	}
	if score > 100 {
		score = 100
	}
	return score
}
