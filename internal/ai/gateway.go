package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/utils"
)

const (
	DefaultRetries      = 2
	DefaultBackoff      = time.Second
	DefaultStageTimeout = 2 * time.Minute
	DefaultLogLength    = 512
)

var errEmptyResponse = errors.New("oracle returned empty response")

// Gateway wraps an Oracle with retry, backoff and per-stage timeouts.
type Gateway struct {
	oracle       Oracle
	provider     string
	logger       *zap.Logger
	backoff      time.Duration
	stageTimeout time.Duration
	maxLogLength int
	wait         func(context.Context, time.Duration) error
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger. Provider and model fields are attached.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// WithProvider names the provider for log fields.
func WithProvider(name string) GatewayOption {
	return func(g *Gateway) { g.provider = strings.TrimSpace(name) }
}

// WithBackoff sets the base wait. Attempt n waits 2^n * base.
func WithBackoff(base time.Duration) GatewayOption {
	return func(g *Gateway) {
		if base >= 0 {
			g.backoff = base
		}
	}
}

// WithStageTimeout bounds every Infer call. Zero disables the bound.
func WithStageTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d >= 0 {
			g.stageTimeout = d
		}
	}
}

// WithMaxLogLength limits prompt and response previews in debug logs.
func WithMaxLogLength(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.maxLogLength = n
		}
	}
}

// WithWait replaces the backoff wait function.
func WithWait(wait func(context.Context, time.Duration) error) GatewayOption {
	return func(g *Gateway) {
		if wait != nil {
			g.wait = wait
		}
	}
}

// NewGateway returns a gateway around oracle.
func NewGateway(oracle Oracle, opts ...GatewayOption) (*Gateway, error) {
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}

	g := &Gateway{
		oracle:       oracle,
		backoff:      DefaultBackoff,
		stageTimeout: DefaultStageTimeout,
		maxLogLength: DefaultLogLength,
		wait:         utils.WaitFor,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.logger = logger.ForOracle(g.logger, g.provider, oracle.Model())

	return g, nil
}

// Model reports the underlying oracle model.
func (g *Gateway) Model() string {
	if g == nil || g.oracle == nil {
		return ""
	}
	return g.oracle.Model()
}

// StageTimeout reports the configured per-call timeout.
func (g *Gateway) StageTimeout() time.Duration {
	return g.stageTimeout
}

// BackoffDelay returns the wait before retry number attempt (0-based).
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<attempt)
}

// TotalBackoff sums every wait a call with the given retries may perform.
func TotalBackoff(base time.Duration, retries int) time.Duration {
	var total time.Duration
	for attempt := 0; attempt < retries; attempt++ {
		total += BackoffDelay(base, attempt)
	}
	return total
}

// Infer runs the prompt through the oracle. On success the returned
// RawResult has non-empty Content. After the last failed attempt it returns a
// RawResult with empty Content together with a TransientInferenceFailure.
func (g *Gateway) Infer(ctx context.Context, prompt string, opts Options) (*RawResult, error) {
	retries := DefaultRetries
	if opts.Retries != nil && *opts.Retries >= 0 {
		retries = *opts.Retries
	}
	if opts.Model == "" {
		opts.Model = g.oracle.Model()
	}

	if g.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.stageTimeout)
		defer cancel()
	}

	log := logger.ForStage(g.logger, opts.Stage, opts.RunID)
	log.Debug("sending prompt",
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLength)),
	)

	result := &RawResult{Model: opts.Model}
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		result.Attempts = attempt + 1

		text, err := g.oracle.Generate(ctx, prompt, opts)
		result.Raw = text
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyResponse
		}

		if err == nil {
			result.Content = text
			log.Debug("received response",
				zap.Int("attempt", result.Attempts),
				zap.String("response_preview", utils.TruncateForLog(text, g.maxLogLength)),
			)
			return result, nil
		}

		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			lastErr = ctxErr
			break
		}

		if attempt == retries {
			break
		}

		delay := BackoffDelay(g.backoff, attempt)
		log.Warn("inference attempt failed, retrying",
			zap.Int("attempt", result.Attempts),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if waitErr := g.wait(ctx, delay); waitErr != nil {
			lastErr = waitErr
			break
		}
	}

	result.Content = ""
	result.Err = lastErr
	log.Error("inference failed", zap.Int("attempts", result.Attempts), zap.Error(lastErr))

	return result, &Error{
		Kind:   KindTransientInference,
		Stage:  opts.Stage,
		Detail: fmt.Sprintf("no usable response after %d attempt(s)", result.Attempts),
		Raw:    result.Raw,
		Err:    lastErr,
	}
}
