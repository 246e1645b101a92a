package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/skillgap/internal/skillgap"
)

var (
	extractCmd = &cobra.Command{
		Use:   "extract",
		Short: "Extract skills from a resume",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			resume, err := readResume(cmd)
			if err != nil {
				return err
			}

			res, err := s.analyzer.Extract(ctx, skillgap.ExtractRequest{ResumeText: resume})
			return finish(cmd, res.Response(), err)
		},
	}

	matchCmd = &cobra.Command{
		Use:   "match",
		Short: "Map resume skills onto the taxonomy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			resume, skills, err := s.resumeSkills(ctx, cmd)
			if err != nil {
				return err
			}

			res, err := s.analyzer.Match(ctx, skillgap.MatchRequest{Skills: skills, ResumeText: resume})
			return finish(cmd, res.Response(), err)
		},
	}

	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Score proficiency of resume skills on a 1-5 scale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			resume, skills, err := s.resumeSkills(ctx, cmd)
			if err != nil {
				return err
			}

			job, err := s.selectJob(cmd, false)
			if err != nil {
				return err
			}

			req := skillgap.ProficiencyRequest{Skills: skills, ResumeText: resume}
			if job != nil {
				req.Narrative = job.Description
				req.RequiredSkills = job.RequirementNames()
			}

			res, err := s.analyzer.ScoreProficiency(ctx, req)
			return finish(cmd, res.Response(), err)
		},
	}

	expandCmd = &cobra.Command{
		Use:   "expand",
		Short: "Expand a job description into a requirements narrative",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			job, err := s.selectJob(cmd, true)
			if err != nil {
				return err
			}

			res, err := s.analyzer.ExpandJob(ctx, skillgap.ExpandRequest{
				Title:          job.Title,
				Company:        job.Company,
				Description:    job.Description,
				RequiredSkills: job.RequirementNames(),
			})
			return finish(cmd, res.Response(), err)
		},
	}

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Score resume skills against job requirements without matching and proficiency context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			resume, skills, err := s.resumeSkills(ctx, cmd)
			if err != nil {
				return err
			}

			job, err := s.selectJob(cmd, true)
			if err != nil {
				return err
			}

			res, err := s.analyzer.ScoreCompatibility(ctx, skillgap.CompatibilityRequest{
				ResumeSkills: skills,
				ResumeText:   resume,
				JobTitle:     job.Title,
				Company:      job.Company,
				Description:  job.Description,
				Requirements: job.Requirements,
			})
			return finish(cmd, res.Response(), err)
		},
	}

	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "Build a learning path for missing skills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s := newSession(ctx)

			missing, _ := cmd.Flags().GetStringSlice("missing")
			current, _ := cmd.Flags().GetStringSlice("current")
			title, _ := cmd.Flags().GetString("title")

			res, err := s.analyzer.SynthesizePath(ctx, skillgap.PathRequest{
				Missing:  missing,
				Current:  current,
				JobTitle: title,
			})
			return finish(cmd, res.Response(), err)
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{extractCmd, matchCmd, scoreCmd, compareCmd} {
		addResumeFlag(c)
	}
	for _, c := range []*cobra.Command{matchCmd, scoreCmd, compareCmd} {
		c.Flags().StringSlice("skills", nil, "comma separated skills; extracted from the resume when empty")
	}

	pathCmd.Flags().StringSlice("missing", nil, "comma separated missing skills")
	pathCmd.Flags().StringSlice("current", nil, "comma separated skills already held")
	pathCmd.Flags().String("title", "", "target job title")
	pathCmd.MarkFlagRequired("missing")

	rootCmd.AddCommand(extractCmd, matchCmd, scoreCmd, expandCmd, compareCmd, pathCmd)
}

// resumeSkills reads the resume and takes --skills, or extracts them when the
// flag is empty.
func (s *session) resumeSkills(ctx context.Context, cmd *cobra.Command) (string, []string, error) {
	resume, err := readResume(cmd)
	if err != nil {
		return "", nil, err
	}

	skills, _ := cmd.Flags().GetStringSlice("skills")
	if len(skills) > 0 {
		return resume, skills, nil
	}

	extracted, err := s.analyzer.Extract(ctx, skillgap.ExtractRequest{ResumeText: resume})
	if err != nil {
		return "", nil, fmt.Errorf("extract skills: %w", err)
	}
	return resume, extracted.Skills, nil
}
