package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the skill taxonomy summary or the prompt context built from it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %s", err)
		}

		tax, err := loadTaxonomy(config.Taxonomy)
		if err != nil {
			return err
		}

		if ok, _ := cmd.Flags().GetBool("context"); ok {
			_, err := cmd.OutOrStdout().Write([]byte(tax.Context(100, 50, 150) + "\n"))
			return err
		}

		return writeResult(cmd, tax.Summary())
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)

	taxonomyCmd.Flags().Bool("context", false, "print the prompt context instead of the summary")
	taxonomyCmd.Flags().String("file", "", "taxonomy file (default is the embedded roadmaps)")

	viper.BindPFlag("taxonomy.file", taxonomyCmd.Flags().Lookup("file"))
}
