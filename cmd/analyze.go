package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/skillgap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full skill gap analysis of a resume against a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	addResumeFlag(analyzeCmd)
	analyzeCmd.Flags().Float64P("threshold", "t", skillgap.DefaultMatchThreshold, "match percentage at which a skill counts as current")
	analyzeCmd.Flags().Bool("expand", true, "expand the job description before scoring")

	viper.BindPFlag("analysis.match-threshold", analyzeCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("analysis.expand", analyzeCmd.Flags().Lookup("expand"))
}

func analyze(cmd *cobra.Command) error {
	ctx := context.Background()
	s := newSession(ctx)

	s.logger.Info("starting the skillgap analysis", zap.String("version", version))

	resume, err := readResume(cmd)
	if err != nil {
		return err
	}

	job, err := s.selectJob(cmd, false)
	if err != nil {
		return err
	}
	if job == nil {
		s.logger.Info("no job listing given, only skills and proficiency will be reported")
	}

	report, err := s.analyzer.Analyze(ctx, skillgap.AnalyzeRequest{ResumeText: resume, Job: job})
	if report == nil {
		return errors.Join(err, errors.New("analysis produced no report"))
	}

	for _, w := range report.Warnings {
		s.logger.Warn(w, zap.String("run_id", report.RunID))
	}

	if werr := writeResult(cmd, report.Response(err)); werr != nil {
		return errors.Join(err, werr)
	}
	if err != nil {
		s.logger.Error("analysis failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
	return err
}
