package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)

	logger.Debug("breaker state changed", "url", "http://primary")
	assert.Zero(t, buf.Len(), "debug is hidden at info level")

	logger.Info("session created", "id", "abc")
	assert.Contains(t, buf.String(), "session created")
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `), buf.String())
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.done("Fetched 4 establishments")

	assert.Regexp(t, `Fetched 4 establishments \(\d+(\.\d+)?(ms|s|µs|ns)\)`, buf.String())
}

func TestLoggerContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	logger := newLogger(&buf, LogDebug)
	ctx := withLogger(context.Background(), logger)
	assert.Same(t, logger, loggerFromContext(ctx))

	loggerFromContext(ctx).Debug("reload requested")
	assert.Contains(t, buf.String(), "reload requested")
}
