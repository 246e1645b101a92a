package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("reading config: %v", err)
	}
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("decodeConfig returned error: %v", err)
	}

	if config.AI.Provider != providerGemini {
		t.Fatalf("expected gemini provider, got %q", config.AI.Provider)
	}
	if config.AI.Retries != 2 {
		t.Fatalf("expected 2 retries, got %d", config.AI.Retries)
	}
	if config.AI.StageTimeout != 2*time.Minute {
		t.Fatalf("expected 2m stage timeout, got %s", config.AI.StageTimeout)
	}
	if config.Analysis.MatchThreshold != 50 || !config.Analysis.Expand {
		t.Fatalf("unexpected analysis config %#v", config.Analysis)
	}
	if config.AI.Gemini == nil || config.AI.Gemini.Model == "" {
		t.Fatalf("expected default gemini model, got %#v", config.AI.Gemini)
	}
}

func TestDecodeConfigFile(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, `
ai:
  provider: Anthropic
  retries: 1
  stage-timeout: 30s
  anthropic:
    model: claude-test
    api-key-file: /run/secrets/anthropic
analysis:
  match-threshold: 65
  expand: false
jobs:
  file: jobs.yaml
`))
	if err != nil {
		t.Fatalf("decodeConfig returned error: %v", err)
	}

	if config.AI.Provider != providerAnthropic {
		t.Fatalf("expected provider to be normalized, got %q", config.AI.Provider)
	}
	if config.AI.StageTimeout != 30*time.Second {
		t.Fatalf("expected 30s stage timeout, got %s", config.AI.StageTimeout)
	}
	if config.AI.Anthropic.Model != "claude-test" || config.AI.Anthropic.APIKeyFile != "/run/secrets/anthropic" {
		t.Fatalf("unexpected anthropic config %#v", config.AI.Anthropic)
	}
	if config.Analysis.MatchThreshold != 65 || config.Analysis.Expand {
		t.Fatalf("unexpected analysis config %#v", config.Analysis)
	}
	if config.Jobs.File != "jobs.yaml" {
		t.Fatalf("unexpected jobs file %q", config.Jobs.File)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "unknown provider", yaml: "ai:\n  provider: openai\n", want: "unsupported ai provider"},
		{name: "negative retries", yaml: "ai:\n  retries: -1\n", want: "ai.retries"},
		{name: "threshold above range", yaml: "analysis:\n  match-threshold: 101\n", want: "match-threshold"},
		{name: "temperature above range", yaml: "ai:\n  temperature: 3\n", want: "ai.temperature"},
		{name: "timeout shorter than backoff", yaml: "ai:\n  retries: 3\n  stage-timeout: 5s\n", want: "stage-timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeConfig(newTestViper(t, tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewOracleUnsupportedProvider(t *testing.T) {
	if _, err := newOracle(t.Context(), &AIConfig{Provider: "openai"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
