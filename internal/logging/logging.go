// Package logging builds the zap logger shared by the CLI and the engine.
package logging

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger writing console-encoded lines to stderr.
// Verbose enables debug level.
func New(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// WithRun tags every line of one batch run with a fresh run id
func WithRun(logger *zap.Logger) (*zap.Logger, string) {
	id := uuid.NewString()
	return logger.With(zap.String("run", id)), id
}
