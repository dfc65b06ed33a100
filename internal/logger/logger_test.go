package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"lingua-daily/internal/config"
)

func TestNewZapConfigHonorsLevelAndFormat(t *testing.T) {
	cfg := &config.Config{
		Environment: config.Environment{Name: "production"},
		Log:         config.Log{Level: "warn", Format: "json"},
	}

	zc, err := newZapConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())
	assert.Equal(t, "json", zc.Encoding)
	assert.False(t, zc.Development)
}

func TestNewZapConfigDevelopmentConsole(t *testing.T) {
	cfg := &config.Config{
		Environment: config.Environment{Name: "development"},
		Log:         config.Log{Level: "debug", Format: "console"},
	}

	zc, err := newZapConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, zc.Level.Level())
	assert.Equal(t, "console", zc.Encoding)
	assert.True(t, zc.Development)
}

func TestNewZapConfigRejectsBadValues(t *testing.T) {
	_, err := newZapConfig(&config.Config{Log: config.Log{Level: "loud", Format: "json"}})
	assert.Error(t, err)

	_, err = newZapConfig(&config.Config{Log: config.Log{Level: "info", Format: "xml"}})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	log, err := New(&config.Config{
		Environment: config.Environment{Name: "development"},
		Log:         config.Log{Level: "info", Format: "console"},
	})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Info("logger ready")
}
