// Package logging builds the zap loggers used by the scraper, the
// downloader, and the scr command.
//
// Two modes are supported:
//   - Production: JSON lines, ISO8601 timestamps, no stack traces
//   - Development: colored console output at debug level
//
// Library components never build their own logger; they receive one
// through an option and fall back to zap.NewNop().
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every component so log lines can be correlated.
const (
	KeyComponent  = "component"
	KeyDocumentID = "document_id"
	KeyDownloadID = "download_id"
	KeyURL        = "url"
)

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"; empty is info
	Development bool
	OutputPaths []string
}

// New creates a logger from cfg. Output goes to stderr unless OutputPaths
// says otherwise, so stdout stays free for command results.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.MessageKey = "message"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		zapCfg.DisableStacktrace = true
	}
	// one command run logs a handful of lines; never drop any
	zapCfg.Sampling = nil

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zapCfg.Level = level
	}

	zapCfg.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Component returns a child logger tagged with the component name.
func Component(logger *zap.Logger, name string) *zap.Logger {
	return OrNop(logger).With(zap.String(KeyComponent, name))
}
