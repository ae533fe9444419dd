package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		verbose bool
		want    zapcore.Level
	}{
		{"info", "console", false, zapcore.InfoLevel},
		{"warn", "json", false, zapcore.WarnLevel},
		{"error", "", false, zapcore.ErrorLevel},
		{"info", "json", true, zapcore.DebugLevel},
		{"debug", "console", false, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format, tt.verbose)
			require.NoError(t, err)
			assert.Equal(t, tt.want, zapcore.LevelOf(logger.Core()))
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "json", false)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "xml", false)
	assert.ErrorContains(t, err, "invalid log format")
}
