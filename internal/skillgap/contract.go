package skillgap

import (
	"errors"

	"github.com/spigell/skillgap/internal/ai"
)

// Response shapes exchanged with hosts. Every response carries the untouched
// oracle text in raw, including after a failed parse.

type ExtractResponse struct {
	Skills []string `json:"skills"`
	Raw    string   `json:"raw"`
}

type MatchResponse struct {
	Matched []MatchedSkill `json:"matched"`
	Raw     string         `json:"raw"`
}

type ProficiencyResponse struct {
	Scores   map[string]float64 `json:"scores"`
	Clamped  []ClampedScore     `json:"clamped,omitempty"`
	Unscored []string           `json:"unscored,omitempty"`
	Raw      string             `json:"raw"`
}

type ExpandResponse struct {
	Narrative string `json:"narrative"`
	Raw       string `json:"raw"`
}

type CompatibilityResponse struct {
	Overall  float64      `json:"overall"`
	PerSkill []SkillMatch `json:"perSkill"`
	Counts   BandCounts   `json:"counts"`
	Raw      string       `json:"raw"`
}

type PathResponse struct {
	Steps []LearningStep `json:"steps"`
	Raw   string         `json:"raw"`
}

// ErrorResponse is the structured failure surfaced at the boundary.
type ErrorResponse struct {
	Kind   string `json:"kind"`
	Stage  string `json:"stage,omitempty"`
	Detail string `json:"detail"`
	Raw    string `json:"raw,omitempty"`
}

// AnalyzeResponse is the full pipeline output.
type AnalyzeResponse struct {
	RunID                  string             `json:"runId"`
	Skills                 []string           `json:"skills"`
	Matched                []MatchedSkill     `json:"matched"`
	Proficiency            map[string]float64 `json:"proficiency"`
	Narrative              string             `json:"narrative,omitempty"`
	OverallMatchPercentage *float64           `json:"overallMatchPercentage,omitempty"`
	PerSkill               []SkillMatch       `json:"perSkill,omitempty"`
	Counts                 *BandCounts        `json:"counts,omitempty"`
	CurrentSkills          []AssessedSkill    `json:"currentSkills,omitempty"`
	MissingSkills          []AssessedSkill    `json:"missingSkills,omitempty"`
	LearningPath           []LearningStep     `json:"learningPath,omitempty"`
	Stages                 []StageStatus      `json:"stages"`
	Warnings               []string           `json:"warnings,omitempty"`
	Raw                    map[string]string  `json:"raw"`
	Error                  *ErrorResponse     `json:"error,omitempty"`
}

func (r *ExtractResult) Response() ExtractResponse {
	return ExtractResponse{Skills: nonNil(r.Skills), Raw: r.Raw}
}

func (r *MatchResult) Response() MatchResponse {
	matched := r.Matched
	if matched == nil {
		matched = []MatchedSkill{}
	}
	return MatchResponse{Matched: matched, Raw: r.Raw}
}

func (r *ProficiencyResult) Response() ProficiencyResponse {
	return ProficiencyResponse{
		Scores:   r.Scores.Map(),
		Clamped:  r.Clamped,
		Unscored: r.Unscored,
		Raw:      r.Raw,
	}
}

func (r *ExpandResult) Response() ExpandResponse {
	return ExpandResponse{Narrative: r.Narrative, Raw: r.Raw}
}

func (r *CompatibilityResult) Response() CompatibilityResponse {
	skills := r.Skills
	if skills == nil {
		skills = []SkillMatch{}
	}
	return CompatibilityResponse{Overall: r.Overall, PerSkill: skills, Counts: r.Counts, Raw: r.Raw}
}

func (r *PathResult) Response() PathResponse {
	steps := r.Steps
	if steps == nil {
		steps = []LearningStep{}
	}
	return PathResponse{Steps: steps, Raw: r.Raw}
}

// NewErrorResponse converts err for output. It returns nil for a nil error.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	resp := &ErrorResponse{Kind: string(ai.KindOf(err)), Detail: err.Error(), Raw: ai.RawOf(err)}
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		resp.Stage = aiErr.Stage
	}
	if resp.Kind == "" {
		resp.Kind = "Unknown"
	}
	return resp
}

// Response flattens the report. err is the error Analyze returned with it.
func (r *Report) Response(err error) AnalyzeResponse {
	resp := AnalyzeResponse{
		RunID:       r.RunID,
		Skills:      []string{},
		Matched:     []MatchedSkill{},
		Proficiency: map[string]float64{},
		Stages:      r.Statuses,
		Warnings:    r.Warnings,
		Raw:         map[string]string{},
		Error:       NewErrorResponse(err),
	}

	if r.Extraction != nil {
		resp.Skills = nonNil(r.Extraction.Skills)
		resp.Raw[StageExtraction] = r.Extraction.Raw
	}
	if r.Matching != nil {
		resp.Matched = r.Matching.Response().Matched
		resp.Raw[StageMatching] = r.Matching.Raw
	}
	if r.Expansion != nil {
		resp.Narrative = r.Expansion.Narrative
		resp.Raw[StageExpansion] = r.Expansion.Raw
	}
	if r.Proficiency != nil {
		resp.Proficiency = r.Proficiency.Scores.Map()
		resp.Raw[StageProficiency] = r.Proficiency.Raw
	}
	if r.Compatibility != nil {
		resp.Raw[StageCompatibility] = r.Compatibility.Raw
		if st, ok := r.Status(StageCompatibility); ok && st.State == StateOK {
			overall := r.Compatibility.Overall
			counts := r.Compatibility.Counts
			resp.OverallMatchPercentage = &overall
			resp.Counts = &counts
			resp.PerSkill = r.Compatibility.Skills
			resp.CurrentSkills = r.Buckets.Current
			resp.MissingSkills = r.Buckets.Missing
		}
	}
	if r.LearningPath != nil {
		resp.LearningPath = r.LearningPath.Steps
		resp.Raw[StageLearningPath] = r.LearningPath.Raw
	}

	for stage, raw := range resp.Raw {
		if raw == "" {
			delete(resp.Raw, stage)
		}
	}

	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
