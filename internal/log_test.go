package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNewLogger_KeepsLevel(t *testing.T) {
	l := NewLogger(ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelDebug, l.GetLevel())
	assert.Equal(t, LogLevelDebug, l.With("run", "x").GetLevel())
}

func TestNopLogger_IsSilent(t *testing.T) {
	l := NewNopLogger().With("run", "x")
	assert.NotPanics(t, func() {
		l.Error("boom %d", 1)
		l.Trace("ignored")
	})
}
