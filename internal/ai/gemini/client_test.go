package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/spigell/skillgap/internal/ai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateBuildsConfig(t *testing.T) {
	models := &fakeModels{resp: textResponse(" {\"a\":1} ", "", "tail")}
	g := newGenerator(models, "")

	out, err := g.Generate(context.Background(), "  hello ", ai.Options{
		Temperature: 0.5,
		MaxTokens:   2000,
		System:      "system",
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{\"a\":1}\ntail" {
		t.Fatalf("unexpected output %q", out)
	}
	if models.model != DefaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if len(models.contents) != 1 || models.contents[0].Parts[0].Text != "hello" {
		t.Fatalf("unexpected contents: %+v", models.contents)
	}

	cfg := models.config
	if cfg == nil || cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction, got %+v", cfg)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 2000 {
		t.Fatalf("unexpected max tokens: %d", cfg.MaxOutputTokens)
	}
	if cfg.ResponseMIMEType != jsonMIMEType {
		t.Fatalf("expected json mime type, got %q", cfg.ResponseMIMEType)
	}
}

func TestGenerateModelOverride(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	g := newGenerator(models, "gemini-pro")

	if _, err := g.Generate(context.Background(), "p", ai.Options{Model: "gemini-flash"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if models.model != "gemini-flash" {
		t.Fatalf("expected override model, got %q", models.model)
	}
	if models.config.ResponseMIMEType != "" || models.config.SystemInstruction != nil {
		t.Fatalf("expected plain text config, got %+v", models.config)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
		prompt string
		want   string
	}{
		{name: "empty prompt", models: &fakeModels{}, prompt: "  ", want: "prompt must not be empty"},
		{name: "api error", models: &fakeModels{err: errors.New("quota")}, prompt: "p", want: "generate content: quota"},
		{name: "nil response", models: &fakeModels{}, prompt: "p", want: "no response"},
		{name: "empty text", models: &fakeModels{resp: textResponse("  ")}, prompt: "p", want: "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.models, "m")
			_, err := g.Generate(context.Background(), tt.prompt, ai.Options{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
