package anthropic

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spigell/skillgap/internal/ai"
)

type fakeMessages struct {
	resp   *sdk.Message
	err    error
	params sdk.MessageNewParams
}

func (f *fakeMessages) New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error) {
	f.params = body
	return f.resp, f.err
}

func TestGenerate(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{Content: []sdk.ContentBlockUnion{
		{Type: "text", Text: " first "},
		{Type: "tool_use"},
		{Type: "text", Text: "second"},
	}}}
	g := newGenerator(fake, "claude-test")

	out, err := g.Generate(context.Background(), "prompt", ai.Options{
		Temperature: 0.5,
		MaxTokens:   1000,
		System:      "be brief",
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output %q", out)
	}

	if string(fake.params.Model) != "claude-test" {
		t.Fatalf("unexpected model %q", fake.params.Model)
	}
	if fake.params.MaxTokens != 1000 {
		t.Fatalf("unexpected max tokens %d", fake.params.MaxTokens)
	}
	if len(fake.params.System) != 1 || !strings.HasPrefix(fake.params.System[0].Text, "be brief") {
		t.Fatalf("unexpected system blocks: %+v", fake.params.System)
	}
	if !strings.Contains(fake.params.System[0].Text, "JSON") {
		t.Fatalf("expected json instruction in system prompt")
	}
	if len(fake.params.Messages) != 1 || fake.params.Messages[0].Content[0].OfText.Text != "prompt" {
		t.Fatalf("unexpected messages: %+v", fake.params.Messages)
	}
}

func TestGenerateDefaults(t *testing.T) {
	fake := &fakeMessages{resp: &sdk.Message{Content: []sdk.ContentBlockUnion{{Type: "text", Text: "ok"}}}}
	g := newGenerator(fake, "")

	if _, err := g.Generate(context.Background(), "prompt", ai.Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
	if fake.params.MaxTokens != defaultMaxTokens {
		t.Fatalf("expected default max tokens, got %d", fake.params.MaxTokens)
	}
	if len(fake.params.System) != 0 {
		t.Fatalf("expected no system blocks, got %+v", fake.params.System)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		fake   *fakeMessages
		prompt string
		want   string
	}{
		{name: "empty prompt", fake: &fakeMessages{}, prompt: "", want: "prompt must not be empty"},
		{name: "api error", fake: &fakeMessages{err: errors.New("overloaded")}, prompt: "p", want: "create message: overloaded"},
		{name: "nil response", fake: &fakeMessages{}, prompt: "p", want: "no response"},
		{name: "no text", fake: &fakeMessages{resp: &sdk.Message{}}, prompt: "p", want: "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.fake, "m")
			if _, err := g.Generate(context.Background(), tt.prompt, ai.Options{}); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator("", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
