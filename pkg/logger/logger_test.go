package logger

import (
	"testing"

	"github.com/GlebRadaev/memberhub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name           string
		logLvl         string
		logFormat      string
		expectedError  bool
		expectedLogLvl zapcore.Level
	}{
		{name: "debug console", logLvl: "debug", expectedLogLvl: zapcore.DebugLevel},
		{name: "info console", logLvl: "info", logFormat: "console", expectedLogLvl: zapcore.InfoLevel},
		{name: "warn json", logLvl: "warn", logFormat: "json", expectedLogLvl: zapcore.WarnLevel},
		{name: "error json", logLvl: "error", logFormat: "json", expectedLogLvl: zapcore.ErrorLevel},
		{name: "invalid log level", logLvl: "verbose", expectedError: true},
		{name: "invalid log format", logLvl: "info", logFormat: "xml", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(&config.Config{LogLvl: tt.logLvl, LogFormat: tt.logFormat})

			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.expectedLogLvl))
			if tt.expectedLogLvl > zapcore.DebugLevel {
				assert.False(t, zap.L().Core().Enabled(tt.expectedLogLvl-1))
			}
		})
	}
}

func TestEncoderFor(t *testing.T) {
	encoding, cfg, err := encoderFor("json")
	require.NoError(t, err)
	assert.Equal(t, "json", encoding)
	assert.Equal(t, "ts", cfg.TimeKey)

	encoding, _, err = encoderFor("")
	require.NoError(t, err)
	assert.Equal(t, "console", encoding)
}
