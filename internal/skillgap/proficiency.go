package skillgap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/parser"
	"github.com/spigell/skillgap/internal/taxonomy"
	"github.com/spigell/skillgap/internal/utils"
)

const (
	proficiencyResumeWindow  = 20000
	proficiencySkillLimit    = 50
	proficiencyJobSkillLimit = 15
)

var proficiencySchema = mustSchema(StageProficiency)

// Scores is an ordered set of proficiency scores.
type Scores []ProficiencyScore

// Lookup finds a score by skill name, case-insensitively.
func (s Scores) Lookup(name string) (float64, bool) {
	for _, score := range s {
		if sameSkill(score.Skill, name) {
			return score.Value, true
		}
	}
	return 0, false
}

// Map returns the scores keyed by skill name.
func (s Scores) Map() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, score := range s {
		out[score.Skill] = score.Value
	}
	return out
}

type ProficiencyRequest struct {
	Skills     []string `validate:"required,min=1"`
	ResumeText string   `validate:"required"`
	// Narrative and RequiredSkills calibrate scores against a job when set.
	Narrative      string
	RequiredSkills []string
}

type ProficiencyResult struct {
	Scores   Scores
	Clamped  []ClampedScore
	Unscored []string
	Raw      string
}

// ScoreProficiency rates each skill from 1 to 5. Scores are keyed back to
// the caller's spelling; out-of-range values are clamped and recorded.
func (a *Analyzer) ScoreProficiency(ctx context.Context, req ProficiencyRequest) (*ProficiencyResult, error) {
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	if err := checkInput(StageProficiency, req); err != nil {
		return &ProficiencyResult{Scores: Scores{}}, err
	}

	log := a.stageLogger(ctx, StageProficiency)
	skills := utils.Head(req.Skills, proficiencySkillLimit)

	content, raw, err := a.infer(ctx, StageProficiency, map[string]string{
		"JOB_CONTEXT": proficiencyJobContext(req.Narrative, req.RequiredSkills),
		"SKILLS":      strings.Join(skills, ", "),
		"RESUME":      utils.Leading(req.ResumeText, proficiencyResumeWindow),
	})
	result := &ProficiencyResult{Scores: Scores{}, Unscored: []string{}, Raw: raw}
	if err != nil {
		return result, err
	}

	value, err := parser.ParseJSON(content)
	if err != nil {
		return result, malformed(StageProficiency, raw, err)
	}
	var reply map[string]float64
	if err := parser.DecodeValue(raw, value, proficiencySchema, &reply); err != nil {
		return result, malformed(StageProficiency, raw, err)
	}

	byKey := make(map[string]float64, len(reply))
	keys := make([]string, 0, len(reply))
	for k := range reply {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := taxonomy.Key(k)
		if _, dup := byKey[key]; !dup {
			byKey[key] = reply[k]
		}
	}

	used := map[string]struct{}{}
	for _, skill := range skills {
		key := taxonomy.Key(skill)
		if _, dup := used[key]; dup {
			continue
		}
		v, ok := byKey[key]
		if !ok {
			result.Unscored = append(result.Unscored, skill)
			continue
		}
		used[key] = struct{}{}

		clamped, changed := ClampScore(v)
		if changed {
			result.Clamped = append(result.Clamped, ClampedScore{Skill: skill, Original: v, Value: clamped})
			log.Warn("proficiency score out of range, clamped",
				zap.String("skill", skill),
				zap.Float64("original", v),
				zap.Float64("clamped", clamped),
			)
		}
		result.Scores = append(result.Scores, ProficiencyScore{Skill: skill, Value: clamped})
	}

	if dropped := len(byKey) - len(used); dropped > 0 {
		log.Debug("ignored scores for unknown skills", zap.Int("count", dropped))
	}
	log.Info("proficiency scored",
		zap.Int("scored", len(result.Scores)),
		zap.Int("unscored", len(result.Unscored)),
		zap.Int("clamped", len(result.Clamped)),
	)

	return result, nil
}

func proficiencyJobContext(narrative string, required []string) string {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" && len(required) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nJob requirements context:\n")
	if narrative != "" {
		fmt.Fprintf(&b, "Job description: %s\n", narrative)
	}
	if len(required) > 0 {
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(utils.Head(required, proficiencyJobSkillLimit), ", "))
	}
	b.WriteString("Rate a skill critical for the job higher when the candidate has strong matching experience and lower when the experience is in a different context.\n")
	return b.String()
}

// scoresOf returns the scores of a possibly missing result.
func scoresOf(p *ProficiencyResult) Scores {
	if p == nil {
		return nil
	}
	return p.Scores
}
