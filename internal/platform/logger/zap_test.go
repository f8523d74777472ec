package logger

import (
	"testing"

	"mailru_broker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestNew(t *testing.T) {
	for _, cfg := range []*config.Config{
		{GinMode: "release", LogLevel: "warn", LogFormat: "json"},
		{GinMode: "debug", LogLevel: "debug", LogFormat: "console"},
	} {
		l, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, ParseLevel(cfg.LogLevel) == zapcore.DebugLevel, l.Core().Enabled(zapcore.DebugLevel))
	}
}
