// Package skillgap implements the inference stages that turn resume and job
// text into scored, comparable skill data, and the pipeline that chains them.
package skillgap

import (
	"github.com/spigell/skillgap/internal/taxonomy"
)

// Confidence describes how a resume skill was matched to the taxonomy.
type Confidence string

const (
	ConfidenceExact   Confidence = "exact"
	ConfidencePartial Confidence = "partial"
	ConfidenceNone    Confidence = "none"
)

// Level is the discrete reading of a proficiency score.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelBasic        Level = "Basic"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Band is the display classification of a match percentage.
type Band string

const (
	BandStrong   Band = "strong"
	BandModerate Band = "moderate"
	BandWeak     Band = "weak"
)

// Difficulty of a learning step.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// DefaultRequiredLevel labels missing skills whose requirement has no level.
const DefaultRequiredLevel = "Required"

type MatchedSkill struct {
	Skill       string     `json:"skill"`
	Keywords    []string   `json:"keywords"`
	MatchedFrom string     `json:"matched_from"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning,omitempty"`
}

type ProficiencyScore struct {
	Skill string  `json:"skill"`
	Value float64 `json:"value"`
}

// Level derives the level on demand.
func (s ProficiencyScore) Level() Level {
	return LevelOf(s.Value)
}

// ClampedScore records an out-of-range score that was pulled into [1, 5].
type ClampedScore struct {
	Skill    string  `json:"skill"`
	Original float64 `json:"original"`
	Value    float64 `json:"value"`
}

type JobRequirement struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	RequiredLevel string   `json:"required_level,omitempty" yaml:"required_level"`
	Topics        []string `json:"topics,omitempty" yaml:"topics"`
}

// Job is one posting the resume is compared against.
type Job struct {
	Title        string           `json:"title" yaml:"title"`
	Company      string           `json:"company" yaml:"company"`
	Description  string           `json:"description" yaml:"description"`
	Requirements []JobRequirement `json:"requirements" yaml:"skills"`
}

// RequirementNames lists the requirement names in order.
func (j *Job) RequirementNames() []string {
	if j == nil {
		return nil
	}
	names := make([]string, 0, len(j.Requirements))
	for _, r := range j.Requirements {
		names = append(names, r.Name)
	}
	return names
}

// SkillMatch is the oracle's verdict for one requirement. MatchPercentage is
// kept exactly as returned.
type SkillMatch struct {
	Skill           string   `json:"skill"`
	MatchPercentage float64  `json:"matchPercentage"`
	MatchedFrom     []string `json:"matchedFrom"`
	Reasoning       string   `json:"reasoning"`
}

type BandCounts struct {
	Strong   int `json:"strong"`
	Moderate int `json:"moderate"`
	Weak     int `json:"weak"`
}

type LearningStep struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Difficulty  Difficulty `json:"difficulty"`
	Resources   []string   `json:"resources"`
}

// AssessedSkill is a SkillMatch with its display band and both level
// candidates. Level holds the one that applies to the bucket it sits in.
type AssessedSkill struct {
	SkillMatch
	Band             Band   `json:"band"`
	ProficiencyLevel Level  `json:"proficiencyLevel,omitempty"`
	RequiredLevel    string `json:"requiredLevel"`
	Level            string `json:"level,omitempty"`
}

type Buckets struct {
	Current []AssessedSkill `json:"currentSkills"`
	Missing []AssessedSkill `json:"missingSkills"`
}

// All returns current skills followed by missing skills.
func (b Buckets) All() []AssessedSkill {
	out := make([]AssessedSkill, 0, len(b.Current)+len(b.Missing))
	out = append(out, b.Current...)
	return append(out, b.Missing...)
}

// Names returns the skill names of a bucket.
func Names(skills []AssessedSkill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Skill)
	}
	return out
}

func sameSkill(a, b string) bool {
	return taxonomy.Key(a) == taxonomy.Key(b)
}
