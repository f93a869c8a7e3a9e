// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

import (
	"sync"
	"time"
)

// SourceStatus is the derived health of one remote endpoint.
type SourceStatus string

// API source statuses.
const (
	SourceHealthy  SourceStatus = "HEALTHY"
	SourceDegraded SourceStatus = "DEGRADED"
	SourceFailing  SourceStatus = "FAILING"
	SourceUnknown  SourceStatus = "UNKNOWN"
)

const (
	// ewmaAlpha weights the response-time moving average.
	ewmaAlpha = 0.2
	// failingConsecutive flips a source to FAILING.
	failingConsecutive = 5
	// failingRate is the windowed failure-rate bar.
	failingRate = 0.5
	// degradedResponseTime is the slow bar for DEGRADED.
	degradedResponseTime = 5 * time.Second
	// outcomeWindow is how many recent calls feed the failure rate.
	outcomeWindow = 20
)

// APISourceHealth tracks rolling statistics for one remote endpoint a
// monitor talks to.
type APISourceHealth struct {
	mu         sync.Mutex
	sourceID   string
	sourceName string

	lastSuccess         time.Time
	totalCalls          int64
	totalFailures       int64
	consecutiveFailures int
	avgResponseTime     time.Duration
	lastResponseTime    time.Duration
	lastError           string

	// ring of recent outcomes, true = failure
	window    [outcomeWindow]bool
	windowLen int
	windowPos int

	now func() time.Time
}

// NewAPISourceHealth returns empty statistics for one endpoint.
func NewAPISourceHealth(sourceID, sourceName string) *APISourceHealth {
	return &APISourceHealth{sourceID: sourceID, sourceName: sourceName, now: time.Now}
}

// RecordSuccess folds one successful call into the statistics.
func (h *APISourceHealth) RecordSuccess(responseTime time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totalCalls++
	h.consecutiveFailures = 0
	h.lastSuccess = h.now()
	h.lastError = ""
	h.recordResponseTime(responseTime)
	h.pushOutcome(false)
}

// RecordFailure folds one failed call into the statistics.
func (h *APISourceHealth) RecordFailure(responseTime time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totalCalls++
	h.totalFailures++
	h.consecutiveFailures++
	if err != nil {
		h.lastError = err.Error()
	}
	h.recordResponseTime(responseTime)
	h.pushOutcome(true)
}

func (h *APISourceHealth) recordResponseTime(d time.Duration) {
	h.lastResponseTime = d
	if h.avgResponseTime == 0 {
		h.avgResponseTime = d
		return
	}
	h.avgResponseTime = time.Duration(ewmaAlpha*float64(d) + (1-ewmaAlpha)*float64(h.avgResponseTime))
}

func (h *APISourceHealth) pushOutcome(failed bool) {
	h.window[h.windowPos] = failed
	h.windowPos = (h.windowPos + 1) % outcomeWindow
	if h.windowLen < outcomeWindow {
		h.windowLen++
	}
}

func (h *APISourceHealth) failureRate() float64 {
	if h.windowLen == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < h.windowLen; i++ {
		if h.window[i] {
			failures++
		}
	}
	return float64(failures) / float64(h.windowLen)
}

// Status derives the endpoint status from the current statistics.
func (h *APISourceHealth) Status() SourceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked()
}

func (h *APISourceHealth) statusLocked() SourceStatus {
	if h.totalCalls == 0 {
		return SourceUnknown
	}
	if h.consecutiveFailures >= failingConsecutive || h.failureRate() > failingRate {
		return SourceFailing
	}
	if h.avgResponseTime > degradedResponseTime {
		return SourceDegraded
	}
	return SourceHealthy
}

// APISourceSnapshot is a point-in-time copy for the status API.
type APISourceSnapshot struct {
	SourceID            string        `json:"source_id"`
	SourceName          string        `json:"source_name"`
	Status              SourceStatus  `json:"status"`
	LastSuccess         time.Time     `json:"last_success"`
	TotalCalls          int64         `json:"total_calls"`
	TotalFailures       int64         `json:"total_failures"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	AvgResponseTime     time.Duration `json:"avg_response_time"`
	LastResponseTime    time.Duration `json:"last_response_time"`
	LastError           string        `json:"last_error,omitempty"`
}

// Snapshot copies the current statistics.
func (h *APISourceHealth) Snapshot() APISourceSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return APISourceSnapshot{
		SourceID:            h.sourceID,
		SourceName:          h.sourceName,
		Status:              h.statusLocked(),
		LastSuccess:         h.lastSuccess,
		TotalCalls:          h.totalCalls,
		TotalFailures:       h.totalFailures,
		ConsecutiveFailures: h.consecutiveFailures,
		AvgResponseTime:     h.avgResponseTime,
		LastResponseTime:    h.lastResponseTime,
		LastError:           h.lastError,
	}
}
