package skillgap

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/parser"
	"github.com/spigell/skillgap/internal/taxonomy"
	"github.com/spigell/skillgap/internal/utils"
)

const (
	extractionResumeWindow = 20000
	minResumeLength        = 20
)

// extractionAliases are spellings the oracle commonly returns that map to a
// known skill name without being one.
var extractionAliases = map[string]string{
	"cpp":    "C++",
	"cxx":    "C++",
	"nodejs": "Node.js",
	"html":   "HTML5",
	"css":    "CSS3",
}

type ExtractRequest struct {
	ResumeText string `validate:"required,min=20"`
	// TaxonomyContext replaces the analyzer's taxonomy context when set.
	TaxonomyContext string
}

type ExtractResult struct {
	Skills []string
	Raw    string
}

// Extract asks the oracle for the resume's skills. Zero skills is an
// EmptyExtractionFailure.
func (a *Analyzer) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	if err := checkInput(StageExtraction, req); err != nil {
		return &ExtractResult{Skills: []string{}}, err
	}

	log := a.stageLogger(ctx, StageExtraction)

	tctx := strings.TrimSpace(req.TaxonomyContext)
	if tctx == "" {
		tctx = a.taxonomy.Context(100, 50, 150)
	}

	content, raw, err := a.infer(ctx, StageExtraction, map[string]string{
		"TAXONOMY": tctx,
		"RESUME":   utils.Leading(req.ResumeText, extractionResumeWindow),
	})
	result := &ExtractResult{Skills: []string{}, Raw: raw}
	if err != nil {
		return result, err
	}

	result.Skills = a.canonicalize(parser.ParseList(parser.NormalizeList(content)))
	if len(result.Skills) == 0 {
		return result, ai.NewError(ai.KindEmptyExtraction, StageExtraction, "no skills found in response", raw, nil)
	}

	log.Info("skills extracted", zap.Int("count", len(result.Skills)))
	return result, nil
}

// canonicalize applies taxonomy casing and drops case-insensitive duplicates,
// keeping first occurrences in order.
func (a *Analyzer) canonicalize(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		name := s
		if alias, ok := extractionAliases[taxonomy.Key(s)]; ok {
			name = alias
		}
		if canonical, ok := a.taxonomy.Canonical(name); ok {
			name = canonical
		}
		key := taxonomy.Key(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
