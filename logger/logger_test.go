package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLevel(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))

	SetLevel(slog.LevelError)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelError))
}

func TestSetVerbose(t *testing.T) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetVerbose(true)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))

	SetVerbose(false)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelInfo))
}
