// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package telemetry

import "github.com/prometheus/client_golang/prometheus"

// The hub's instruments, shared by the packages that increment them.
var (
	// SensorUpdates counts responses accepted by the sensor bus.
	SensorUpdates = NewCounter("sensorbus", "updates_total", nil,
		"Sensor responses accepted by the bus")

	// SensorDiscards counts responses discarded for arriving out of order.
	SensorDiscards = NewCounter("sensorbus", "discards_total", nil,
		"Sensor responses discarded by last-write-wins")

	// SensorOverrides counts control-command overrides installed.
	SensorOverrides = NewCounter("sensorbus", "overrides_total", nil,
		"Control overrides installed on the bus")

	// MonitorRuns counts monitor work cycles by outcome.
	MonitorRuns = NewCounter("monitor", "runs_total", []string{"monitor", "status"},
		"Monitor work cycles by resulting status")

	// SyncRuns counts sync engine executions per integration.
	SyncRuns = NewCounter("sync", "runs_total", []string{"integration"},
		"Sync engine runs")

	// SyncEntities counts entities created and removed by sync.
	SyncEntities = NewCounter("sync", "entities_total", []string{"integration", "op"},
		"Entities created/removed by the sync engine")

	// ControlDispatches counts control dispatches by outcome.
	ControlDispatches = NewCounter("control", "dispatches_total", []string{"integration", "outcome"},
		"Control dispatches by outcome")

	// RemoteCallSeconds tracks remote API latency per integration.
	RemoteCallSeconds = NewHistogram("remote", "call_seconds", []string{"integration"},
		"Remote API call latency", prometheus.DefBuckets)
)
