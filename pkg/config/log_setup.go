// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/util/log"
)

// LoggerName specifies the name of the logger instance.
type LoggerName string

// SetupLogger builds the zap backend for pkg/util/log according to the
// supplied settings and installs it process-wide.
func SetupLogger(loggerName LoggerName, logLevel, logFile string, jsonFormat, logToConsole bool) error {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if jsonFormat {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var sinks []zapcore.WriteSyncer
	if logToConsole {
		sinks = append(sinks, zapcore.AddSync(os.Stderr))
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.NewConfigf("unable to open log file %s: %v", logFile, err)
		}
		sinks = append(sinks, zapcore.AddSync(f))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, zapcore.AddSync(os.Stderr))
	}

	// Level gating happens in pkg/util/log; the zap core accepts everything.
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), zapcore.DebugLevel)
	inner := zap.New(core).Named(string(loggerName)).Sugar()

	log.SetupLogger(inner, logLevel)
	return nil
}
