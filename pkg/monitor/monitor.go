// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package monitor implements the periodic task framework: the Monitor
// interface, the cooperative run loop, per-API-source health statistics and
// the aggregation into one status per monitor.
package monitor

import (
	"context"
	"time"
)

// Status is the coarse health of one monitor.
type Status string

// Monitor statuses, ordered HEALTHY < WARNING < ERROR by severity.
const (
	StatusHealthy  Status = "HEALTHY"
	StatusWarning  Status = "WARNING"
	StatusError    Status = "ERROR"
	StatusDisabled Status = "DISABLED"
	StatusUnknown  Status = "UNKNOWN"
)

func severity(s Status) int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusWarning:
		return 1
	case StatusError:
		return 2
	default:
		// DISABLED and UNKNOWN do not participate in worst-of
		return -1
	}
}

// Worst returns the more severe of two statuses. Non-severity statuses
// (DISABLED, UNKNOWN) lose against any severity-bearing one.
func Worst(a, b Status) Status {
	if severity(b) > severity(a) {
		return b
	}
	if severity(a) == -1 {
		return b
	}
	return a
}

// Monitor is a periodic task polling one external source.
type Monitor interface {
	// ID uniquely names the monitor instance.
	ID() string
	// Interval is the sleep between work cycles.
	Interval() time.Duration
	// Initialize runs once before the first cycle.
	Initialize(ctx context.Context) error
	// DoWork runs one cycle. Errors are recorded, never fatal to the loop.
	DoWork(ctx context.Context) error
	// Cleanup runs once after the loop exits.
	Cleanup()
	// Stop requests termination; idempotent and non-blocking.
	Stop()
	// Health exposes the monitor's health snapshot.
	Health() *HealthStatus
}

// HealthStatusProvider is the read-only face the presentation layer sees.
type HealthStatusProvider interface {
	ID() string
	Health() *HealthStatus
}
