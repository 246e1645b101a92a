package skillgap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/parser"
	"github.com/spigell/skillgap/internal/utils"
)

const (
	compatibilityResumeWindow = 20000
	compatibilitySkillLines   = 100
	requirementTopicLimit     = 3
)

var compatibilitySchema = mustSchema(StageCompatibility)

type CompatibilityRequest struct {
	ResumeSkills []string
	Matched      []MatchedSkill
	Proficiency  Scores
	ResumeText   string
	JobTitle     string
	Company      string
	// Narrative is the expanded description; Description is used when it is
	// empty because expansion was not run.
	Narrative    string
	Description  string
	Requirements []JobRequirement `validate:"required,min=1,dive"`
}

type CompatibilityResult struct {
	Overall float64
	Skills  []SkillMatch
	Counts  BandCounts
	Raw     string
}

type compatibilityReply struct {
	JobSkills []struct {
		SkillName           string   `json:"skill_name"`
		MatchPercentage     float64  `json:"match_percentage"`
		MatchedResumeSkills []string `json:"matched_resume_skills"`
		Reasoning           string   `json:"reasoning"`
	} `json:"job_skills"`
	Overall float64 `json:"overall_match_percentage"`
}

// ScoreCompatibility scores each requirement against the resume. Every
// requirement must be answered and every percentage must lie in [0, 100];
// percentages are never adjusted.
func (a *Analyzer) ScoreCompatibility(ctx context.Context, req CompatibilityRequest) (*CompatibilityResult, error) {
	if err := checkInput(StageCompatibility, req); err != nil {
		return &CompatibilityResult{Skills: []SkillMatch{}}, err
	}

	narrative := strings.TrimSpace(req.Narrative)
	if narrative == "" {
		narrative = strings.TrimSpace(req.Description)
	}

	content, raw, err := a.infer(ctx, StageCompatibility, map[string]string{
		"TITLE":         orUnknown(req.JobTitle),
		"COMPANY":       orUnknown(req.Company),
		"NARRATIVE":     orUnknown(narrative),
		"JOB_SKILLS":    bulletList(requirementLines(req.Requirements)),
		"RESUME_SKILLS": bulletList(utils.Head(resumeSkillLines(req.Matched, req.ResumeSkills, req.Proficiency), compatibilitySkillLines)),
		"RESUME":        utils.Leading(strings.TrimSpace(req.ResumeText), compatibilityResumeWindow),
	})
	result := &CompatibilityResult{Skills: []SkillMatch{}, Raw: raw}
	if err != nil {
		return result, err
	}

	var reply compatibilityReply
	if err := parser.Decode(content, compatibilitySchema, &reply); err != nil {
		return result, malformed(StageCompatibility, raw, err)
	}

	if !inPercentRange(reply.Overall) {
		return result, ai.NewError(ai.KindMalformedOutput, StageCompatibility,
			fmt.Sprintf("overall match percentage %v outside [0, 100]", reply.Overall), raw, nil)
	}

	var missing []string
	for _, r := range req.Requirements {
		found := false
		for _, js := range reply.JobSkills {
			if !sameSkill(js.SkillName, r.Name) {
				continue
			}
			if !inPercentRange(js.MatchPercentage) {
				return result, ai.NewError(ai.KindMalformedOutput, StageCompatibility,
					fmt.Sprintf("match percentage %v for %q outside [0, 100]", js.MatchPercentage, js.SkillName), raw, nil)
			}
			result.Skills = append(result.Skills, SkillMatch{
				Skill:           r.Name,
				MatchPercentage: js.MatchPercentage,
				MatchedFrom:     cleanStrings(js.MatchedResumeSkills),
				Reasoning:       strings.TrimSpace(js.Reasoning),
			})
			found = true
			break
		}
		if !found {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) > 0 {
		result.Skills = []SkillMatch{}
		return result, ai.NewError(ai.KindMalformedOutput, StageCompatibility,
			"no score for requirements: "+strings.Join(missing, ", "), raw, nil)
	}

	result.Overall = reply.Overall
	result.Counts = CountBands(result.Skills)

	log := a.stageLogger(ctx, StageCompatibility)
	if extra := len(reply.JobSkills) - len(result.Skills); extra > 0 {
		log.Debug("ignored scores for skills not in the job", zap.Int("count", extra))
	}
	log.Info("compatibility scored",
		zap.Float64("overall", result.Overall),
		zap.Int("strong", result.Counts.Strong),
		zap.Int("moderate", result.Counts.Moderate),
		zap.Int("weak", result.Counts.Weak),
	)

	return result, nil
}

func inPercentRange(v float64) bool {
	return v >= 0 && v <= 100
}

// resumeSkillLines lists matched skills with keywords first, then extracted
// skills the matcher did not cover. Proficiency is shown only when known.
func resumeSkillLines(matched []MatchedSkill, extracted []string, scores Scores) []string {
	lines := make([]string, 0, len(matched)+len(extracted))
	for _, m := range matched {
		var attrs []string
		if v, ok := scores.Lookup(m.Skill); ok {
			attrs = append(attrs, fmt.Sprintf("proficiency: %g/5", v))
		} else if v, ok := scores.Lookup(m.MatchedFrom); ok {
			attrs = append(attrs, fmt.Sprintf("proficiency: %g/5", v))
		}
		if len(m.Keywords) > 0 {
			attrs = append(attrs, "keywords: "+strings.Join(m.Keywords, ", "))
		}
		lines = append(lines, withAttrs(m.Skill, attrs))
	}
	for _, s := range extracted {
		if _, ok := FindMatched(matched, s); ok {
			continue
		}
		var attrs []string
		if v, ok := scores.Lookup(s); ok {
			attrs = append(attrs, fmt.Sprintf("proficiency: %g/5", v))
		}
		lines = append(lines, withAttrs(s, attrs))
	}
	return lines
}

func requirementLines(reqs []JobRequirement) []string {
	lines := make([]string, 0, len(reqs))
	for _, r := range reqs {
		var attrs []string
		if r.RequiredLevel != "" {
			attrs = append(attrs, "required level: "+r.RequiredLevel)
		}
		if topics := cleanStrings(utils.Head(r.Topics, requirementTopicLimit)); len(topics) > 0 {
			attrs = append(attrs, "topics: "+strings.Join(topics, ", "))
		}
		lines = append(lines, withAttrs(r.Name, attrs))
	}
	return lines
}

func withAttrs(name string, attrs []string) string {
	if len(attrs) == 0 {
		return name
	}
	return name + " (" + strings.Join(attrs, "; ") + ")"
}
