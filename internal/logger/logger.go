package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger
type Config struct {
	Environment string
	LogLevel    string
}

// New creates a structured logger. Development gets a human-readable
// console encoder, everything else JSON on stdout.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		dev := zap.NewDevelopmentConfig()
		dev.Level = zap.NewAtomicLevelAt(getLogLevel(cfg.LogLevel))
		return dev.Build()
	}

	prod := zap.Config{
		Level:            zap.NewAtomicLevelAt(getLogLevel(cfg.LogLevel)),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return prod.Build()
}

func getLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
