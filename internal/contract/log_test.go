package contract

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{name: "info at info level", level: log.InfoLevel, logFunc: func(l *log.Logger) { l.Info("test") }, wantLog: true},
		{name: "debug at info level", level: log.InfoLevel, logFunc: func(l *log.Logger) { l.Debug("test") }, wantLog: false},
		{name: "debug at debug level", level: log.DebugLevel, logFunc: func(l *log.Logger) { l.Debug("test") }, wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestSetVerbose(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, log.InfoLevel))

	LogDebug("hidden")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	LogDebug("shown", "frames", 3)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "frames=3")

	buf.Reset()
	SetVerbose(false)
	LogDebug("hidden again")
	LogWarn("careful", assert.AnError)
	assert.NotContains(t, buf.String(), "hidden again")
	assert.Contains(t, buf.String(), "careful")
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, log.DebugLevel)

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, LoggerFromContext(ctx))
	assert.Same(t, Logger(), LoggerFromContext(context.Background()))

	p := NewProgress(ctx)
	p.Done("synthesized", "keyframes", 21)
	assert.Contains(t, buf.String(), "synthesized")
	assert.Contains(t, buf.String(), "elapsed")
}
