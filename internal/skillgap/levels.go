package skillgap

const (
	MinProficiency = 1.0
	MaxProficiency = 5.0

	// DefaultMatchThreshold splits current from missing skills.
	DefaultMatchThreshold = 50.0
)

// LevelOf maps a proficiency score to its level.
func LevelOf(score float64) Level {
	switch {
	case score >= 4.5:
		return LevelAdvanced
	case score >= 3.5:
		return LevelIntermediate
	case score >= 2.5:
		return LevelBasic
	default:
		return LevelBeginner
	}
}

// ClampScore pulls score into [MinProficiency, MaxProficiency] and reports
// whether it had to.
func ClampScore(score float64) (float64, bool) {
	switch {
	case score < MinProficiency:
		return MinProficiency, true
	case score > MaxProficiency:
		return MaxProficiency, true
	default:
		return score, false
	}
}

// BandOf classifies a match percentage for display. It never feeds back
// into the percentage.
func BandOf(pct float64) Band {
	switch {
	case pct >= 75:
		return BandStrong
	case pct >= 50:
		return BandModerate
	default:
		return BandWeak
	}
}

// CountBands tallies bands over matches.
func CountBands(matches []SkillMatch) BandCounts {
	var c BandCounts
	for _, m := range matches {
		switch BandOf(m.MatchPercentage) {
		case BandStrong:
			c.Strong++
		case BandModerate:
			c.Moderate++
		default:
			c.Weak++
		}
	}
	return c
}

// Assess attaches bands and level candidates to every match. Proficiency
// and requirement lookups are case-insensitive.
func Assess(matches []SkillMatch, reqs []JobRequirement, scores Scores) []AssessedSkill {
	out := make([]AssessedSkill, 0, len(matches))
	for _, m := range matches {
		a := AssessedSkill{
			SkillMatch:    m,
			Band:          BandOf(m.MatchPercentage),
			RequiredLevel: DefaultRequiredLevel,
		}
		if v, ok := scores.Lookup(m.Skill); ok {
			a.ProficiencyLevel = LevelOf(v)
		}
		for _, r := range reqs {
			if sameSkill(r.Name, m.Skill) {
				if r.RequiredLevel != "" {
					a.RequiredLevel = r.RequiredLevel
				}
				break
			}
		}
		out = append(out, a)
	}
	return out
}

// Split partitions skills by threshold: pct >= threshold is current. Order
// within each bucket follows the input, so Split(b.All(), t) == b.
func Split(skills []AssessedSkill, threshold float64) Buckets {
	b := Buckets{Current: []AssessedSkill{}, Missing: []AssessedSkill{}}
	for _, s := range skills {
		if s.MatchPercentage >= threshold {
			s.Level = string(s.ProficiencyLevel)
			b.Current = append(b.Current, s)
			continue
		}
		s.Level = s.RequiredLevel
		if s.Level == "" {
			s.Level = DefaultRequiredLevel
		}
		b.Missing = append(b.Missing, s)
	}
	return b
}
