package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	assert.Equal(t, zapcore.DebugLevel, atomLevel.Level())
	assert.True(t, atomLevel.Enabled(zapcore.DebugLevel))

	SetLevel(LevelError)
	assert.Equal(t, zapcore.ErrorLevel, atomLevel.Level())
	assert.False(t, atomLevel.Enabled(zapcore.WarnLevel))

	SetLevel(Level("verbose"))
	assert.Equal(t, zapcore.InfoLevel, atomLevel.Level())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
