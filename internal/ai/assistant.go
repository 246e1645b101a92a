package ai

import (
	"context"
)

// Options tune a single inference call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// Retries is the number of additional attempts after the first one.
	// Nil means DefaultRetries.
	Retries *int
	System  string
	// JSON asks the provider for a JSON response body when it supports one.
	JSON  bool
	Stage string
	RunID string
}

// Oracle is a text-to-text inference capability. Implementations must not
// retry on their own; the Gateway owns the retry policy.
type Oracle interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
}

// RawResult is what the gateway hands to a stage. Raw always holds the full
// text the oracle returned on the final attempt, even when a stage later
// fails to parse it.
type RawResult struct {
	Content  string
	Raw      string
	Attempts int
	Model    string
	Err      error
}

// Retries is a helper for setting Options.Retries inline.
func Retries(n int) *int {
	return &n
}
