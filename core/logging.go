package core

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEnvVar enables client logging when set to a level name (debug, info, warn, error).
const LogEnvVar = "LEXWARE_LOG"

// LogFormatEnvVar selects the encoder, "console" (default) or "json".
const LogFormatEnvVar = "LEXWARE_LOG_FORMAT"

// NewLogger creates a zap logger writing to stderr with the given level and format.
func NewLogger(level, format string) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var encoder zapcore.Encoder
	if strings.EqualFold(format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), parseLevel(level))
	return zap.New(core, zap.AddCaller()).Named("lexware")
}

// loggerFromEnv returns a no-op logger unless LEXWARE_LOG is set.
func loggerFromEnv() *zap.Logger {
	level := strings.TrimSpace(os.Getenv(LogEnvVar))
	if level == "" {
		return zap.NewNop()
	}
	return NewLogger(level, os.Getenv(LogFormatEnvVar))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
