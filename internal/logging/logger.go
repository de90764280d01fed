package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format of every log line
const TimeLayout = "2006-01-02 15:04:05"

// Options configures the logger built on top of a sink
type Options struct {
	Level   string    // debug, info, warn, error
	Console io.Writer // Optional mirror of every line (e.g. os.Stderr)
}

// EncoderConfig produces lines of the form
// "2006-01-02 15:04:05 - INFO - message".
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

// New creates a zap logger writing through ws. ws is normally a *Sink.
func New(ws zapcore.WriteSyncer, opts Options) *zap.Logger {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(EncoderConfig()), ws, level)

	if opts.Console != nil {
		consoleCfg := EncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(zapcore.AddSync(opts.Console)),
			level,
		)
		core = zapcore.NewTee(core, consoleCore)
	}

	return zap.New(core)
}
