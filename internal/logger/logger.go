// Package logger builds the process logger and the sandbox log emitter.
//
// Every line is written to a single locked stream (stdout in production), so
// lines emitted from request handlers and the stress loop never interleave.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	models "github.com/Schera-ole/qasandbox/internal/model"
)

// New creates a console logger writing "<time> [LEVEL] message" lines to out.
// A nil out writes to stdout.
func New(out zapcore.WriteSyncer, debug bool) *zap.Logger {
	if out == nil {
		out = os.Stdout
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      bracketLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(out),
		level,
	)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.WarnLevel:
		enc.AppendString("[WARNING]")
	default:
		enc.AppendString("[" + l.CapitalString() + "]")
	}
}

// Emitter writes sandbox log lines at a chosen level.
type Emitter struct {
	logger *zap.Logger
}

// NewEmitter creates an emitter on top of logger.
func NewEmitter(logger *zap.Logger) *Emitter {
	return &Emitter{logger: logger}
}

// Log writes one line at level. Unknown levels are written as info.
func (e *Emitter) Log(level models.Level, message string) {
	switch level {
	case models.LevelError:
		e.logger.Error(message)
	case models.LevelWarning:
		e.logger.Warn(message)
	default:
		e.logger.Info(message)
	}
}
