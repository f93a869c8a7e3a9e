// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package log implements the package-level logging API used across the hub.
// The backend is a zap SugaredLogger; callers never touch zap directly.
package log

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	logger *HearthLogger

	// This buffer holds log lines sent to the logger before its
	// initialization. Even if initializing the logger is one of the first
	// things the process does, we still load the conf and resolve the
	// database settings first.
	//
	// This buffer should be very short lived.
	logsBuffer           = []func(){}
	bufferLogsBeforeInit = true
	bufferMutex          sync.Mutex
)

// LogLevel is an ordered severity used to gate the package-level functions.
type LogLevel int

// Supported levels, lowest to highest severity.
const (
	TraceLvl LogLevel = iota
	DebugLvl
	InfoLvl
	WarnLvl
	ErrorLvl
	CriticalLvl
)

var levelNames = map[string]LogLevel{
	"trace":    TraceLvl,
	"debug":    DebugLvl,
	"info":     InfoLvl,
	"warn":     WarnLvl,
	"warning":  WarnLvl,
	"error":    ErrorLvl,
	"critical": CriticalLvl,
}

// LogLevelFromString maps a configuration string to a LogLevel.
func LogLevelFromString(s string) (LogLevel, bool) {
	lvl, ok := levelNames[strings.ToLower(s)]
	return lvl, ok
}

// HearthLogger wraps the zap backend behind the package-level API.
type HearthLogger struct {
	inner *zap.SugaredLogger
	level LogLevel
	l     sync.RWMutex
}

// SetupLogger installs the process-wide logger and flushes any buffered lines.
func SetupLogger(inner *zap.SugaredLogger, level string) {
	l := &HearthLogger{inner: inner}
	lvl, ok := LogLevelFromString(level)
	if !ok {
		lvl = InfoLvl
	}
	l.level = lvl
	logger = l

	// Flushing logs since the logger is now initialized
	bufferMutex.Lock()
	bufferLogsBeforeInit = false
	defer bufferMutex.Unlock()
	for _, logLine := range logsBuffer {
		logLine()
	}
	logsBuffer = []func(){}
}

func addLogToBuffer(logHandle func()) {
	bufferMutex.Lock()
	defer bufferMutex.Unlock()

	logsBuffer = append(logsBuffer, logHandle)
}

func (sw *HearthLogger) shouldLog(level LogLevel) bool {
	sw.l.RLock()
	shouldLog := level >= sw.level
	sw.l.RUnlock()
	return shouldLog
}

func (sw *HearthLogger) changeLogLevel(level string) error {
	sw.l.Lock()
	defer sw.l.Unlock()

	lvl, ok := LogLevelFromString(level)
	if !ok {
		return errors.New("bad log level")
	}
	sw.level = lvl
	return nil
}

// ChangeLogLevel changes the current log level, valid runtime levels are
// trace, debug, info, warn, error and critical.
func ChangeLogLevel(level string) error {
	if logger != nil && logger.inner != nil {
		return logger.changeLogLevel(level)
	}
	return errors.New("cannot change loglevel: logger not initialized")
}

// GetLogLevel returns the current log level, defaulting to info when the
// logger is not yet initialized.
func GetLogLevel() LogLevel {
	if logger == nil {
		return InfoLvl
	}
	logger.l.RLock()
	defer logger.l.RUnlock()
	return logger.level
}

func logWith(level LogLevel, emit func(l *zap.SugaredLogger)) {
	if logger != nil && logger.inner != nil {
		if logger.shouldLog(level) {
			emit(logger.inner)
		}
		return
	}
	if bufferLogsBeforeInit {
		addLogToBuffer(func() { logWith(level, emit) })
	}
}

// Trace logs at the trace level.
func Trace(v ...interface{}) {
	logWith(TraceLvl, func(l *zap.SugaredLogger) { l.Debug(v...) })
}

// Tracef logs with format at the trace level.
func Tracef(format string, params ...interface{}) {
	logWith(TraceLvl, func(l *zap.SugaredLogger) { l.Debugf(format, params...) })
}

// Debug logs at the debug level.
func Debug(v ...interface{}) {
	logWith(DebugLvl, func(l *zap.SugaredLogger) { l.Debug(v...) })
}

// Debugf logs with format at the debug level.
func Debugf(format string, params ...interface{}) {
	logWith(DebugLvl, func(l *zap.SugaredLogger) { l.Debugf(format, params...) })
}

// Info logs at the info level.
func Info(v ...interface{}) {
	logWith(InfoLvl, func(l *zap.SugaredLogger) { l.Info(v...) })
}

// Infof logs with format at the info level.
func Infof(format string, params ...interface{}) {
	logWith(InfoLvl, func(l *zap.SugaredLogger) { l.Infof(format, params...) })
}

// Warn logs at the warn level and returns an error containing the formatted message.
func Warn(v ...interface{}) error {
	err := errors.New(fmt.Sprint(v...))
	logWith(WarnLvl, func(l *zap.SugaredLogger) { l.Warn(v...) })
	return err
}

// Warnf logs with format at the warn level and returns an error containing the formatted message.
func Warnf(format string, params ...interface{}) error {
	err := fmt.Errorf(format, params...)
	logWith(WarnLvl, func(l *zap.SugaredLogger) { l.Warnf(format, params...) })
	return err
}

// Error logs at the error level and returns an error containing the formatted message.
func Error(v ...interface{}) error {
	err := errors.New(fmt.Sprint(v...))
	logWith(ErrorLvl, func(l *zap.SugaredLogger) { l.Error(v...) })
	return err
}

// Errorf logs with format at the error level and returns an error containing the formatted message.
func Errorf(format string, params ...interface{}) error {
	err := fmt.Errorf(format, params...)
	logWith(ErrorLvl, func(l *zap.SugaredLogger) { l.Errorf(format, params...) })
	return err
}

// Critical logs at the critical level and returns an error containing the formatted message.
func Critical(v ...interface{}) error {
	err := errors.New(fmt.Sprint(v...))
	logWith(CriticalLvl, func(l *zap.SugaredLogger) { l.Error(v...) })
	return err
}

// Criticalf logs with format at the critical level and returns an error containing the formatted message.
func Criticalf(format string, params ...interface{}) error {
	err := fmt.Errorf(format, params...)
	logWith(CriticalLvl, func(l *zap.SugaredLogger) { l.Errorf(format, params...) })
	return err
}

// Flush flushes the underlying inner log.
func Flush() {
	if logger != nil && logger.inner != nil {
		logger.inner.Sync() //nolint:errcheck
	}
}
