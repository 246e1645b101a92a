package skillgap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/parser"
)

const (
	defaultStepDuration   = "2-4 weeks"
	defaultStepDifficulty = DifficultyIntermediate
)

type PathRequest struct {
	Missing   []string
	Current   []string
	JobTitle  string
	Narrative string
}

type PathResult struct {
	Steps []LearningStep
	Raw   string
}

// SynthesizePath builds an ordered learning path for the missing skills.
// Steps with missing or invalid fields are completed with placeholders
// instead of failing the batch. No missing skills means no oracle call.
func (a *Analyzer) SynthesizePath(ctx context.Context, req PathRequest) (*PathResult, error) {
	missing := cleanStrings(req.Missing)
	if len(missing) == 0 {
		return &PathResult{Steps: []LearningStep{}}, nil
	}

	content, raw, err := a.infer(ctx, StageLearningPath, map[string]string{
		"MISSING":     bulletList(missing),
		"CURRENT":     bulletList(cleanStrings(req.Current)),
		"JOB_CONTEXT": pathJobContext(req.JobTitle, req.Narrative),
	})
	result := &PathResult{Steps: []LearningStep{}, Raw: raw}
	if err != nil {
		return result, err
	}

	value, err := parser.ParseJSON(content)
	if err != nil {
		return result, malformed(StageLearningPath, raw, err)
	}

	items, ok := stepItems(value)
	if !ok {
		return result, ai.NewError(ai.KindMalformedOutput, StageLearningPath,
			"expected an array of steps or an object with a steps array", raw, nil)
	}

	for i, item := range items {
		result.Steps = append(result.Steps, normalizeStep(i+1, item))
	}

	a.stageLogger(ctx, StageLearningPath).Info("learning path synthesized", zap.Int("steps", len(result.Steps)))
	return result, nil
}

func stepItems(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case map[string]any:
		steps, ok := v["steps"].([]any)
		return steps, ok
	default:
		return nil, false
	}
}

// normalizeStep fills placeholders for a step at 1-based position pos.
func normalizeStep(pos int, item any) LearningStep {
	step := LearningStep{
		ID:         strconv.Itoa(pos),
		Title:      fmt.Sprintf("Step %d", pos),
		Duration:   defaultStepDuration,
		Difficulty: defaultStepDifficulty,
		Resources:  []string{},
	}

	fields, ok := item.(map[string]any)
	if !ok {
		return step
	}

	if v, ok := coerceString(fields["id"]); ok {
		step.ID = v
	}
	if v, ok := coerceString(fields["title"]); ok {
		step.Title = v
	}
	if v, ok := coerceString(fields["description"]); ok {
		step.Description = v
	}
	if v, ok := coerceString(fields["duration"]); ok {
		step.Duration = v
	}
	if v, ok := coerceString(fields["difficulty"]); ok {
		step.Difficulty = difficultyOf(v)
	}
	step.Resources = coerceStrings(fields["resources"])

	return step
}

func difficultyOf(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return d
	default:
		return defaultStepDifficulty
	}
}

func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func coerceStrings(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, ok := coerceString(item); ok {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func pathJobContext(title, narrative string) string {
	title = strings.TrimSpace(title)
	narrative = strings.TrimSpace(narrative)
	if title == "" && narrative == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nTarget job context:\n")
	if title != "" {
		fmt.Fprintf(&b, "Role: %s\n", title)
	}
	if narrative != "" {
		fmt.Fprintf(&b, "%s\n", narrative)
	}
	return b.String()
}
