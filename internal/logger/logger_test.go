package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestL_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	L().Debug("test message", zap.String("file", "a.md"))

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, `"file": "a.md"`)
}

func TestL_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	L().Debug("hidden")
	assert.Empty(t, buf.String())

	L().Warn("shown")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "shown")
}

func TestL_RebuiltOnChange(t *testing.T) {
	defer reset()

	var first, second bytes.Buffer
	SetOutput(&first)
	l1 := L()
	assert.Same(t, l1, L(), "logger is cached between calls")

	SetOutput(&second)
	L().Info("after switch")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "after switch")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))

	l = New(true, &buf)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}
