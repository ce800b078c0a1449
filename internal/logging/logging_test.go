package logging

import (
	"log/slog"
	"testing"

	"github.com/oliverbestmann/krajc/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlogRoutesIntoZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	logger := Slog(zap.New(core))
	logger.Info("Dependency graph built", slog.String("schedule", "Update"), slog.Int("groups", 2))

	entries := logs.FilterMessage("Dependency graph built").All()
	require.Len(t, entries, 1)
	require.Equal(t, "Update", entries[0].ContextMap()["schedule"])
	require.EqualValues(t, 2, entries[0].ContextMap()["groups"])
}

func TestNewLevel(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = New(config.LoggingConfig{Level: "loud", Format: "console"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
}
