package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects format, verbosity and destination of the logs.
type Options struct {
	JSON  bool
	Debug bool
	// Quiet keeps warnings and errors only. Debug wins when both are set.
	Quiet bool
	// File receives the logs instead of stderr when set.
	File string
}

func (o Options) level() zapcore.Level {
	switch {
	case o.Debug:
		return zapcore.DebugLevel
	case o.Quiet:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func (o Options) encoding() string {
	if o.JSON {
		return "json"
	}
	return "console"
}

func (o Options) outputs() []string {
	if file := strings.TrimSpace(o.File); file != "" {
		return []string{file}
	}
	return []string{"stderr"}
}

// New builds the process logger. Messages are keyed as "step".
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:         opts.encoding(),
		Level:            zap.NewAtomicLevelAt(opts.level()),
		OutputPaths:      opts.outputs(),
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	return cfg.Build()
}
