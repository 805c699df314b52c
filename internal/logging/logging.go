package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until Init runs.
var Logger = zap.NewNop().Sugar()

// Options select where diagnostics go.
type Options struct {
	Debug bool
	// File receives log output. Empty means stderr when Stderr is set,
	// otherwise logging stays disabled.
	File   string
	Stderr bool
}

// Init replaces Logger according to opts.
func Init(opts Options) error {
	var outputs []string
	switch {
	case opts.File != "":
		outputs = []string{opts.File}
	case opts.Stderr:
		outputs = []string{"stderr"}
	default:
		Logger = zap.NewNop().Sugar()
		return nil
	}

	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = outputs
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}
