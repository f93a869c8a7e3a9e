// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*zap.SugaredLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func TestBufferedLinesFlushOnSetup(t *testing.T) {
	logger = nil
	bufferLogsBeforeInit = true
	logsBuffer = []func(){}

	Infof("hello %d", 1)
	Debug("dropped at info level")

	inner, logs := newObserved(t)
	SetupLogger(inner, "info")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello 1", logs.All()[0].Message)
	assert.Empty(t, logsBuffer)
}

func TestLevelGate(t *testing.T) {
	inner, logs := newObserved(t)
	SetupLogger(inner, "warn")

	Info("below threshold")
	Warn("at threshold")
	require.Equal(t, 1, logs.Len())

	require.NoError(t, ChangeLogLevel("debug"))
	Debug("now visible")
	assert.Equal(t, 2, logs.Len())

	assert.Error(t, ChangeLogLevel("nosuch"))
}

func TestErrorReturnsMessage(t *testing.T) {
	inner, _ := newObserved(t)
	SetupLogger(inner, "info")

	err := Errorf("boom %s", "now")
	require.Error(t, err)
	assert.Equal(t, "boom now", err.Error())
}

func TestLogLevelFromString(t *testing.T) {
	lvl, ok := LogLevelFromString("CRITICAL")
	require.True(t, ok)
	assert.Equal(t, CriticalLvl, lvl)

	_, ok = LogLevelFromString("verbose")
	assert.False(t, ok)
}
