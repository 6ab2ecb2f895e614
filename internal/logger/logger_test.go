package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevelFromEnv(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("LOG_FORMAT", "")
	Init()
	assert.False(t, Logger.Enabled(context.Background(), slog.LevelDebug))

	t.Setenv("DEBUG", "true")
	Init()
	assert.True(t, Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestInitFormatFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	Init()
	_, ok := Logger.Handler().(*slog.JSONHandler)
	assert.True(t, ok)

	t.Setenv("LOG_FORMAT", "")
	Init()
	_, ok = Logger.Handler().(*slog.TextHandler)
	assert.True(t, ok)
}

func TestWithReturnsScopedLogger(t *testing.T) {
	scoped := With("run_id", "abc")
	require.NotNil(t, scoped)
	assert.NotSame(t, Logger, scoped)
}
