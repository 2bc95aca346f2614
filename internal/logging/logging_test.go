package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Package-level loggers in other packages are captured during their init,
// which runs before Init. ForService must hand back a usable logger then.
func TestForServiceBeforeInitIsUsable(t *testing.T) {
	saved := structuredLogger
	structuredLogger = nil
	t.Cleanup(func() { structuredLogger = saved })

	logger := ForService("scoring")
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Error("degraded path", "reason", "test")
		logger.Warn("degraded path")
	})
}

func TestForServiceCarriesServiceAttribute(t *testing.T) {
	saved := structuredLogger
	t.Cleanup(func() { structuredLogger = saved })

	var buf bytes.Buffer
	structuredLogger = slog.New(slog.NewJSONHandler(&buf, nil))

	ForService("tide").Info("sampled")
	assert.Contains(t, buf.String(), `"service":"tide"`)
	assert.Contains(t, buf.String(), `"msg":"sampled"`)
}

func TestCustomLevelNames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, handlerOptions(LevelTrace)))
	logger.Log(context.Background(), LevelTrace, "tracing")
	assert.Contains(t, buf.String(), `"level":"TRACE"`)
}
