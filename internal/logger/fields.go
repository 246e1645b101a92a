package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by the oracle gateway and the pipeline stages.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldStage    = "stage"
	FieldRunID    = "run_id"
)

// Pair is a string field that is dropped when its key or value is blank.
type Pair struct {
	Key   string
	Value string
}

// Compact converts pairs into trimmed zap fields, skipping blank ones.
func Compact(pairs ...Pair) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs))
	for _, p := range pairs {
		key, value := strings.TrimSpace(p.Key), strings.TrimSpace(p.Value)
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to l. A nil l becomes a no-op logger.
func With(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// ForOracle tags l with the provider and model answering prompts.
func ForOracle(l *zap.Logger, provider, model string) *zap.Logger {
	return With(l, Compact(
		Pair{Key: FieldProvider, Value: provider},
		Pair{Key: FieldModel, Value: model},
	)...)
}

// ForStage tags l with a pipeline stage and the run it belongs to.
func ForStage(l *zap.Logger, stage, runID string) *zap.Logger {
	return With(l, Compact(
		Pair{Key: FieldStage, Value: stage},
		Pair{Key: FieldRunID, Value: runID},
	)...)
}
