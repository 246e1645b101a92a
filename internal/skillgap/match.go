package skillgap

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/parser"
	"github.com/spigell/skillgap/internal/taxonomy"
	"github.com/spigell/skillgap/internal/utils"
)

const (
	matchResumeWindow = 10000
	matchSkillLimit   = 100
)

var matchingSchema = mustSchema(StageMatching)

type MatchRequest struct {
	Skills          []string `validate:"required,min=1"`
	ResumeText      string
	TaxonomyContext string
}

type MatchResult struct {
	Matched []MatchedSkill
	Raw     string
}

type matchReply struct {
	MatchedSkills []struct {
		ExtractedSkill string   `json:"extracted_skill"`
		TaxonomySkill  string   `json:"taxonomy_skill"`
		Confidence     string   `json:"confidence"`
		Keywords       []string `json:"keywords"`
		Reasoning      string   `json:"reasoning"`
	} `json:"matched_skills"`
}

// Match maps extracted skills onto taxonomy skills. The result enriches the
// extracted list; it never replaces it.
func (a *Analyzer) Match(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	if err := checkInput(StageMatching, req); err != nil {
		return &MatchResult{Matched: []MatchedSkill{}}, err
	}

	tctx := strings.TrimSpace(req.TaxonomyContext)
	if tctx == "" {
		tctx = a.taxonomy.Context(150, 30, 0)
	}

	content, raw, err := a.infer(ctx, StageMatching, map[string]string{
		"SKILLS":   strings.Join(utils.Head(req.Skills, matchSkillLimit), ", "),
		"TAXONOMY": tctx,
		"RESUME":   utils.Leading(strings.TrimSpace(req.ResumeText), matchResumeWindow),
	})
	result := &MatchResult{Matched: []MatchedSkill{}, Raw: raw}
	if err != nil {
		return result, err
	}

	var reply matchReply
	if err := parser.Decode(content, matchingSchema, &reply); err != nil {
		return result, malformed(StageMatching, raw, err)
	}

	seen := map[string]struct{}{}
	for _, m := range reply.MatchedSkills {
		name := strings.TrimSpace(m.TaxonomySkill)
		if name == "" {
			continue
		}
		if canonical, ok := a.taxonomy.Resolve(name); ok {
			name = canonical
		}
		key := taxonomy.Key(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		keywords := cleanStrings(m.Keywords)
		if len(keywords) == 0 {
			if skill, ok := a.taxonomy.Lookup(name); ok {
				keywords = append([]string{}, skill.Keywords...)
			}
		}

		result.Matched = append(result.Matched, MatchedSkill{
			Skill:       name,
			Keywords:    keywords,
			MatchedFrom: strings.TrimSpace(m.ExtractedSkill),
			Confidence:  confidenceOf(m.Confidence),
			Reasoning:   strings.TrimSpace(m.Reasoning),
		})
	}

	a.stageLogger(ctx, StageMatching).Info("skills matched",
		zap.Int("extracted", len(req.Skills)),
		zap.Int("matched", len(result.Matched)),
	)
	return result, nil
}

// confidenceOf folds the oracle's match labels into the three confidences.
func confidenceOf(label string) Confidence {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "exact":
		return ConfidenceExact
	case "semantic", "partial", "related", "contextual":
		return ConfidencePartial
	default:
		return ConfidenceNone
	}
}

// FindMatched looks up a matched skill by taxonomy name or source spelling.
func FindMatched(matched []MatchedSkill, name string) (MatchedSkill, bool) {
	for _, m := range matched {
		if sameSkill(m.Skill, name) || (m.MatchedFrom != "" && sameSkill(m.MatchedFrom, name)) {
			return m, true
		}
	}
	return MatchedSkill{}, false
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
