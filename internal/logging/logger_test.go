package logging

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DefaultsToInfoAndText(t *testing.T) {
	logger := Init("", "")
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(nil, slog.LevelInfo))
	assert.False(t, logger.Enabled(nil, slog.LevelDebug))
}

func TestInit_DebugLevelEnablesDebugLogs(t *testing.T) {
	logger := Init("debug", "json")
	assert.True(t, logger.Enabled(nil, slog.LevelDebug))
}

func TestInit_SetsPackageLevelLogger(t *testing.T) {
	logger := Init("info", "text")
	assert.Same(t, logger, Logger)
}

func TestWithClient_AttachesClientID(t *testing.T) {
	Init("info", "text")
	l := WithClient(42)
	require.NotNil(t, l)
}

func TestWithError_AttachesError(t *testing.T) {
	Init("info", "text")
	l := WithError(errors.New("boom"))
	require.NotNil(t, l)
}
