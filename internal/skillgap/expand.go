package skillgap

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/utils"
)

const (
	expansionDescriptionWindow = 3000
	expansionSkillLimit        = 20
)

type ExpandRequest struct {
	Title          string `validate:"required"`
	Company        string
	Description    string `validate:"required"`
	RequiredSkills []string
}

type ExpandResult struct {
	Narrative string
	Raw       string
}

// ExpandJob elaborates a terse posting into a requirements narrative. There
// is no fallback to the original description on failure.
func (a *Analyzer) ExpandJob(ctx context.Context, req ExpandRequest) (*ExpandResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := checkInput(StageExpansion, req); err != nil {
		return &ExpandResult{}, err
	}

	content, raw, err := a.infer(ctx, StageExpansion, map[string]string{
		"TITLE":       req.Title,
		"COMPANY":     orUnknown(req.Company),
		"DESCRIPTION": utils.Leading(req.Description, expansionDescriptionWindow),
		"SKILLS":      strings.Join(utils.Head(req.RequiredSkills, expansionSkillLimit), ", "),
	})
	result := &ExpandResult{Raw: raw}
	if err != nil {
		return result, err
	}

	result.Narrative = strings.TrimSpace(content)
	a.stageLogger(ctx, StageExpansion).Info("job description expanded",
		zap.Int("words", len(strings.Fields(result.Narrative))),
	)
	return result, nil
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "(not specified)"
	}
	return s
}
