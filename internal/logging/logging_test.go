package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedirectMovesExistingLoggers(t *testing.T) {
	logger := New("redirect-test")

	var buf bytes.Buffer
	Redirect(&buf)
	t.Cleanup(func() { Redirect(os.Stdout) })

	logger.With(zap.String("button", "P1_A")).Info("pressed")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "redirect-test")
	assert.Contains(t, buf.String(), "pressed")
	assert.Contains(t, buf.String(), "P1_A")
}

func TestLevels(t *testing.T) {
	logger := New("level-test")

	var buf bytes.Buffer
	Redirect(&buf)
	t.Cleanup(func() { Redirect(os.Stdout) })

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	GetLeveler().SetLevel("level-test", zap.DebugLevel)
	assert.Equal(t, zap.DebugLevel, GetLeveler().GetLevel("level-test"))
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	GetLeveler().SetAllLevels(zap.WarnLevel)
	assert.Equal(t, zap.WarnLevel, GetLeveler().GetLevel("level-test"))
	GetLeveler().SetAllLevels(zap.InfoLevel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zap.InfoLevel, GetLeveler().GetLevel("never-created"))
}
