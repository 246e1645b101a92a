package skillgap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillgap/internal/ai"
)

// StageState is the outcome of one stage in a run.
type StageState string

const (
	StateOK       StageState = "ok"
	StateFailed   StageState = "failed"
	StateDegraded StageState = "degraded"
	StateSkipped  StageState = "skipped"
)

// StageStatus reports how a stage went.
type StageStatus struct {
	Stage    string        `json:"stage"`
	State    StageState    `json:"state"`
	Kind     ai.Kind       `json:"kind,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration"`
}

type AnalyzeRequest struct {
	ResumeText string
	// Job is optional; without it the run stops after proficiency scoring.
	Job *Job
}

// Report collects every stage result of one run. Fields of stages that did
// not run are nil.
type Report struct {
	RunID         string
	Extraction    *ExtractResult
	Matching      *MatchResult
	Expansion     *ExpandResult
	Proficiency   *ProficiencyResult
	Compatibility *CompatibilityResult
	Buckets       Buckets
	LearningPath  *PathResult
	Statuses      []StageStatus
	Warnings      []string
}

// Status returns the recorded status of stage.
func (r *Report) Status(stage string) (StageStatus, bool) {
	for _, s := range r.Statuses {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageStatus{}, false
}

func (r *Report) record(stage string, started time.Time, err error) {
	status := StageStatus{Stage: stage, State: StateOK, Duration: time.Since(started)}
	if err != nil {
		status.State = StateFailed
		status.Kind = ai.KindOf(err)
		status.Reason = err.Error()
	}
	r.Statuses = append(r.Statuses, status)
}

func (r *Report) skip(stage, reason string) {
	r.Statuses = append(r.Statuses, StageStatus{Stage: stage, State: StateSkipped, Reason: reason})
}

// Analyze runs extraction, then matching and expansion in parallel, then
// proficiency, compatibility, partitioning and the learning path. On failure
// it returns the report of the stages that completed together with the error.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	ctx = WithRunID(ctx, report.RunID)
	log := a.stageLogger(ctx, "")

	log.Info("analysis started", zap.Bool("with_job", req.Job != nil))

	started := time.Now()
	extraction, err := a.Extract(ctx, ExtractRequest{ResumeText: req.ResumeText})
	report.Extraction = extraction
	report.record(StageExtraction, started, err)
	if err != nil {
		return report, fmt.Errorf("extract skills: %w", err)
	}

	job := req.Job
	runExpansion := job != nil && a.expand

	var (
		group          errgroup.Group
		matchStarted   = time.Now()
		matchDuration  time.Duration
		matchErr       error
		expandDuration time.Duration
		expandErr      error
	)

	group.Go(func() error {
		report.Matching, matchErr = a.Match(ctx, MatchRequest{
			Skills:     extraction.Skills,
			ResumeText: req.ResumeText,
		})
		matchDuration = time.Since(matchStarted)
		return nil
	})

	if runExpansion {
		group.Go(func() error {
			expandStarted := time.Now()
			report.Expansion, expandErr = a.ExpandJob(ctx, ExpandRequest{
				Title:          job.Title,
				Company:        job.Company,
				Description:    job.Description,
				RequiredSkills: job.RequirementNames(),
			})
			expandDuration = time.Since(expandStarted)
			return expandErr
		})
	}

	waitErr := group.Wait()

	matchStatus := StageStatus{Stage: StageMatching, State: StateOK, Duration: matchDuration}
	if matchErr != nil {
		matchStatus.State = StateDegraded
		matchStatus.Kind = ai.KindOf(matchErr)
		matchStatus.Reason = matchErr.Error()
		report.Warnings = append(report.Warnings, fmt.Sprintf("skill matching unavailable: %v", matchErr))
		log.Warn("skill matching failed, continuing without matched skills", zap.Error(matchErr))
		report.Matching.Matched = []MatchedSkill{}
	}
	report.Statuses = append(report.Statuses, matchStatus)

	switch {
	case runExpansion:
		status := StageStatus{Stage: StageExpansion, State: StateOK, Duration: expandDuration}
		if expandErr != nil {
			status.State = StateFailed
			status.Kind = ai.KindOf(expandErr)
			status.Reason = expandErr.Error()
		}
		report.Statuses = append(report.Statuses, status)
		if waitErr != nil {
			return report, fmt.Errorf("expand job description: %w", waitErr)
		}
	case job == nil:
		report.skip(StageExpansion, "no job")
	default:
		report.skip(StageExpansion, "disabled")
	}

	profReq := ProficiencyRequest{Skills: extraction.Skills, ResumeText: req.ResumeText}
	if job != nil {
		profReq.RequiredSkills = job.RequirementNames()
		profReq.Narrative = job.Description
		if report.Expansion != nil {
			profReq.Narrative = report.Expansion.Narrative
		}
	}

	started = time.Now()
	report.Proficiency, err = a.ScoreProficiency(ctx, profReq)
	report.record(StageProficiency, started, err)
	if err != nil {
		return report, fmt.Errorf("score proficiency: %w", err)
	}
	for _, c := range report.Proficiency.Clamped {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("proficiency for %s clamped from %g to %g", c.Skill, c.Original, c.Value))
	}

	if job == nil {
		report.skip(StageCompatibility, "no job")
		report.skip(StageLearningPath, "no job")
		log.Info("analysis finished without job comparison")
		return report, nil
	}

	compReq := CompatibilityRequest{
		ResumeSkills: extraction.Skills,
		Matched:      report.Matching.Matched,
		Proficiency:  report.Proficiency.Scores,
		ResumeText:   req.ResumeText,
		JobTitle:     job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Requirements: job.Requirements,
	}
	if report.Expansion != nil {
		compReq.Narrative = report.Expansion.Narrative
	}

	started = time.Now()
	report.Compatibility, err = a.ScoreCompatibility(ctx, compReq)
	report.record(StageCompatibility, started, err)
	if err != nil {
		return report, fmt.Errorf("score compatibility: %w", err)
	}

	assessed := Assess(report.Compatibility.Skills, job.Requirements, report.Proficiency.Scores)
	report.Buckets = Split(assessed, a.threshold)

	pathReq := PathRequest{
		Missing:  Names(report.Buckets.Missing),
		Current:  Names(report.Buckets.Current),
		JobTitle: job.Title,
	}
	if report.Expansion != nil {
		pathReq.Narrative = report.Expansion.Narrative
	}

	started = time.Now()
	report.LearningPath, err = a.SynthesizePath(ctx, pathReq)
	report.record(StageLearningPath, started, err)
	if err != nil {
		return report, fmt.Errorf("synthesize learning path: %w", err)
	}

	log.Info("analysis finished",
		zap.Float64("overall", report.Compatibility.Overall),
		zap.Int("current", len(report.Buckets.Current)),
		zap.Int("missing", len(report.Buckets.Missing)),
		zap.Int("steps", len(report.LearningPath.Steps)),
	)
	return report, nil
}
