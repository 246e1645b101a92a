package skillgap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/aitest"
)

const sampleResume = "Backend engineer with 5 years of Python, Django, and Docker experience. Built REST services and CI pipelines."

func noWait(context.Context, time.Duration) error { return nil }

func newTestAnalyzer(t *testing.T, oracle *aitest.Oracle, opts ...Option) *Analyzer {
	t.Helper()
	return newTestAnalyzerWithLogger(t, oracle, zap.NewNop(), opts...)
}

func newTestAnalyzerWithLogger(t *testing.T, oracle *aitest.Oracle, l *zap.Logger, opts ...Option) *Analyzer {
	t.Helper()
	gw, err := ai.NewGateway(oracle, ai.WithWait(noWait), ai.WithLogger(l))
	require.NoError(t, err)

	opts = append([]Option{WithRetries(0), WithLogger(l)}, opts...)
	a, err := NewAnalyzer(gw, nil, opts...)
	require.NoError(t, err)
	return a
}
