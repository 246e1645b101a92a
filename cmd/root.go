package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/anthropic"
	"github.com/spigell/skillgap/internal/ai/gemini"
	"github.com/spigell/skillgap/internal/skillgap"
)

const (
	app       = "skillgap"
	envPrefix = "SKILLGAP"

	providerGemini    = "gemini"
	providerAnthropic = "anthropic"
)

type Config struct {
	AI       *AIConfig       `mapstructure:"ai"`
	Analysis *AnalysisConfig `mapstructure:"analysis"`
	Taxonomy *TaxonomyConfig `mapstructure:"taxonomy"`
	Jobs     *JobsConfig     `mapstructure:"jobs"`
}

type AIConfig struct {
	Provider     string          `mapstructure:"provider"`
	Retries      int             `mapstructure:"retries"`
	Temperature  float64         `mapstructure:"temperature"`
	StageTimeout time.Duration   `mapstructure:"stage-timeout"`
	MaxLogLength int             `mapstructure:"max-log-length"`
	Gemini       *ProviderConfig `mapstructure:"gemini"`
	Anthropic    *ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type AnalysisConfig struct {
	MatchThreshold float64 `mapstructure:"match-threshold"`
	Expand         bool    `mapstructure:"expand"`
}

type TaxonomyConfig struct {
	File string `mapstructure:"file"`
}

type JobsConfig struct {
	File string `mapstructure:"file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "skillgap compares a resume with job postings and plans how to close the gaps",
		SilenceUsage:  true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillgap.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "log warnings and errors only")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("jobs", "", "job listing file (yaml or json)")
	rootCmd.PersistentFlags().Int("job-index", -1, "index of the job among unique titles; prompts when unset")
	rootCmd.PersistentFlags().StringP("output", "o", "", "write the result to a file instead of stdout")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("jobs.file", rootCmd.PersistentFlags().Lookup("jobs"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.retries", ai.DefaultRetries)
	v.SetDefault("ai.temperature", skillgap.DefaultTemperature)
	v.SetDefault("ai.stage-timeout", ai.DefaultStageTimeout)
	v.SetDefault("ai.max-log-length", ai.DefaultLogLength)
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.anthropic.model", anthropic.DefaultModel)
	v.SetDefault("ai.anthropic.api-key", "")
	v.SetDefault("ai.anthropic.api-key-file", "")
	v.SetDefault("analysis.match-threshold", skillgap.DefaultMatchThreshold)
	v.SetDefault("analysis.expand", true)
	v.SetDefault("taxonomy.file", "")
	v.SetDefault("jobs.file", "")
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults and environment are enough unless a file was asked for.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate checks ranges and that every stage can finish its retry schedule
// within the stage timeout.
func (c *Config) Validate() error {
	if c.AI == nil {
		return errors.New("ai section is required")
	}
	if c.Analysis == nil {
		c.Analysis = &AnalysisConfig{MatchThreshold: skillgap.DefaultMatchThreshold, Expand: true}
	}
	if c.Taxonomy == nil {
		c.Taxonomy = &TaxonomyConfig{}
	}
	if c.Jobs == nil {
		c.Jobs = &JobsConfig{}
	}

	switch provider := strings.ToLower(strings.TrimSpace(c.AI.Provider)); provider {
	case providerGemini, providerAnthropic:
		c.AI.Provider = provider
	default:
		return fmt.Errorf("unsupported ai provider: %q", c.AI.Provider)
	}

	if c.AI.Retries < 0 {
		return fmt.Errorf("ai.retries must not be negative, got %d", c.AI.Retries)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be within [0, 2], got %g", c.AI.Temperature)
	}
	if t := c.Analysis.MatchThreshold; t < 0 || t > 100 {
		return fmt.Errorf("analysis.match-threshold must be within [0, 100], got %g", t)
	}

	backoff := ai.TotalBackoff(ai.DefaultBackoff, c.AI.Retries)
	if c.AI.StageTimeout <= backoff {
		return fmt.Errorf("ai.stage-timeout %s must exceed the retry backoff of %s", c.AI.StageTimeout, backoff)
	}

	return nil
}
