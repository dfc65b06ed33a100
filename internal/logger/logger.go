package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lingua-daily/internal/config"
)

// New builds the process logger: production or development preset by
// environment, with the level and encoding overridden from config.
func New(cfg *config.Config) (*zap.Logger, error) {
	zc, err := newZapConfig(cfg)
	if err != nil {
		return nil, err
	}
	return zc.Build()
}

func newZapConfig(cfg *config.Config) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}

	var zc zap.Config
	if cfg.Environment.Name == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Log.Format {
	case "json", "console":
		zc.Encoding = cfg.Log.Format
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	return zc, nil
}
