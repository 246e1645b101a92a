package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/document"
	"github.com/spigell/skillgap/internal/joblist"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/skillgap"
)

// session holds what every analysis command needs.
type session struct {
	config   *Config
	logger   *zap.Logger
	analyzer *skillgap.Analyzer
}

func newSession(ctx context.Context) *session {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	analyzer, err := newAnalyzer(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the analyzer", zap.Error(err),
			zap.String("hint", "check the ai section of the configuration file"))
	}

	return &session{config: config, logger: logger, analyzer: analyzer}
}

func addResumeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("resume", "r", "", "resume file (.txt, .md, .pdf or .docx)")
	cmd.MarkFlagRequired("resume")
}

func readResume(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("resume")
	if strings.TrimSpace(path) == "" {
		return "", errors.New("--resume is required")
	}
	return document.ReadText(path)
}

// selectJob resolves the job from the listing file. Without --job-index it
// uses the only job or asks interactively.
func (s *session) selectJob(cmd *cobra.Command, required bool) (*skillgap.Job, error) {
	file := strings.TrimSpace(viper.GetString("jobs.file"))
	if file == "" {
		file = strings.TrimSpace(s.config.Jobs.File)
	}
	if file == "" {
		if required {
			return nil, errors.New("a job listing is required (set --jobs or jobs.file)")
		}
		return nil, nil
	}

	jobs, err := joblist.Load(file)
	if err != nil {
		return nil, err
	}
	if jobs.Len() == 0 {
		return nil, fmt.Errorf("no jobs with a title in %s", file)
	}

	index, _ := cmd.Flags().GetInt("job-index")
	if index >= 0 {
		return jobs.ByIndex(index)
	}
	if jobs.Len() == 1 {
		return jobs.Items[0], nil
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: jobs.Titles(),
		Size:  10,
	}
	index, _, err = jobPrompt.Run()
	if err != nil {
		return nil, err
	}

	s.logger.Info("job selected", zap.Int("index", index), zap.String("title", jobs.Items[index].Title))
	return jobs.Items[index], nil
}

// writeResult prints v as indented JSON to --output or stdout.
func writeResult(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// finish writes the result, or the structured error when err is set, and
// passes err through.
func finish(cmd *cobra.Command, result any, err error) error {
	if err != nil {
		if werr := writeResult(cmd, skillgap.NewErrorResponse(err)); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	return writeResult(cmd, result)
}
