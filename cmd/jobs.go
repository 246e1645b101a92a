package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/skillgap/internal/joblist"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List unique job titles of the listing file with their indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file := strings.TrimSpace(viper.GetString("jobs.file"))
		if file == "" {
			return errors.New("a job listing is required (set --jobs or jobs.file)")
		}

		jobs, err := joblist.Load(file)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		for i, job := range jobs.Top(limit) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d skills\n", i, job.Title, job.Company, len(job.Requirements))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().Int("limit", -1, "list at most this many jobs")
}
