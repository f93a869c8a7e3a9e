// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

import (
	"sync"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/status/health"
	"github.com/DataDog/hearth/pkg/util/log"
)

// errorEscalationThreshold flips persistent warnings to ERROR.
const errorEscalationThreshold = 5

// HealthStatus is the mutable health record of one monitor.
type HealthStatus struct {
	mu        sync.Mutex
	monitorID string

	status       Status
	lastCheck    time.Time
	errorMessage string
	errorCount   int

	heartbeat     time.Time
	heartbeatSeen bool

	sources []*APISourceHealth
	rule    AggregationRule

	// lastLogged implements hysteresis: transitions log only when the
	// severity strictly changes.
	lastLogged Status

	now func() time.Time
}

// NewHealthStatus returns an UNKNOWN health record for monitorID.
func NewHealthStatus(monitorID string) *HealthStatus {
	return &HealthStatus{
		monitorID:  monitorID,
		status:     StatusUnknown,
		lastLogged: StatusUnknown,
		now:        time.Now,
	}
}

// RegisterSource adds one remote endpoint to the record. The aggregation
// rule stays count-derived until SetRule pins it.
func (h *HealthStatus) RegisterSource(sourceID, sourceName string) *APISourceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()
	src := NewAPISourceHealth(sourceID, sourceName)
	h.sources = append(h.sources, src)
	return src
}

// SetRule pins the aggregation rule, overriding the count-derived default.
func (h *HealthStatus) SetRule(rule AggregationRule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rule = rule
}

// RecordSuccess marks one successful work cycle: HEALTHY, error counter
// reset, heartbeat stamped.
func (h *HealthStatus) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.lastCheck = now
	h.heartbeat = now
	h.heartbeatSeen = true
	h.errorCount = 0
	h.errorMessage = ""
	h.transitionLocked(StatusHealthy)
}

// RecordError classifies and records one failed work cycle. Transient
// symptoms yield WARNING; anything else, or the fifth consecutive failure,
// yields ERROR.
func (h *HealthStatus) RecordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = h.now()
	h.errorCount++
	if err != nil {
		h.errorMessage = err.Error()
	}

	next := StatusError
	if errors.IsTransientMessage(err) {
		next = StatusWarning
	}
	if h.errorCount >= errorEscalationThreshold {
		next = StatusError
	}
	h.transitionLocked(next)
}

// MarkDisabled records that the monitor is intentionally off.
func (h *HealthStatus) MarkDisabled() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = h.now()
	h.errorCount = 0
	h.errorMessage = ""
	h.transitionLocked(StatusDisabled)
}

// MarkError forces an ERROR status with a message, used on cancellation.
func (h *HealthStatus) MarkError(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = h.now()
	h.errorMessage = message
	h.transitionLocked(StatusError)
}

func (h *HealthStatus) transitionLocked(next Status) {
	h.status = next
	if severity(next) != severity(h.lastLogged) || (next != h.lastLogged && severity(next) == -1) {
		log.Infof("monitor %s health: %s -> %s (%s)", h.monitorID, h.lastLogged, next, h.errorMessage)
		h.lastLogged = next
	}
}

// HeartbeatState classifies the age of the last successful cycle.
func (h *HealthStatus) HeartbeatState() health.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.heartbeatStateLocked()
}

func (h *HealthStatus) heartbeatStateLocked() health.State {
	if !h.heartbeatSeen {
		return health.StateDead
	}
	return health.Classify(h.now().Sub(h.heartbeat))
}

func heartbeatStatus(st health.State) Status {
	switch st {
	case health.StateActive:
		return StatusHealthy
	case health.StateStale:
		return StatusWarning
	default:
		return StatusError
	}
}

// Overall folds the cycle status, the heartbeat contribution and the API
// source aggregate into the worst of the three. A DISABLED monitor stays
// DISABLED regardless.
func (h *HealthStatus) Overall() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusDisabled {
		return StatusDisabled
	}
	if h.status == StatusUnknown && !h.heartbeatSeen {
		return StatusUnknown
	}
	rule := h.rule
	if rule == "" {
		rule = DefaultRule(len(h.sources))
	}
	statuses := make([]SourceStatus, 0, len(h.sources))
	for _, s := range h.sources {
		statuses = append(statuses, s.Status())
	}
	overall := Worst(h.status, heartbeatStatus(h.heartbeatStateLocked()))
	return Worst(overall, AggregateSources(rule, statuses))
}

// HealthSnapshot is a point-in-time copy for the status API.
type HealthSnapshot struct {
	MonitorID      string              `json:"monitor_id"`
	Status         Status              `json:"status"`
	Overall        Status              `json:"overall"`
	LastCheck      time.Time           `json:"last_check"`
	ErrorMessage   string              `json:"error_message,omitempty"`
	ErrorCount     int                 `json:"error_count"`
	Heartbeat      time.Time           `json:"heartbeat"`
	HeartbeatState health.State        `json:"heartbeat_state"`
	Rule           AggregationRule     `json:"aggregation_rule"`
	APISources     []APISourceSnapshot `json:"api_sources,omitempty"`
}

// Snapshot copies the record.
func (h *HealthStatus) Snapshot() HealthSnapshot {
	overall := h.Overall()

	h.mu.Lock()
	defer h.mu.Unlock()
	rule := h.rule
	if rule == "" {
		rule = DefaultRule(len(h.sources))
	}
	snap := HealthSnapshot{
		MonitorID:      h.monitorID,
		Status:         h.status,
		Overall:        overall,
		LastCheck:      h.lastCheck,
		ErrorMessage:   h.errorMessage,
		ErrorCount:     h.errorCount,
		Heartbeat:      h.heartbeat,
		HeartbeatState: h.heartbeatStateLocked(),
		Rule:           rule,
	}
	for _, s := range h.sources {
		snap.APISources = append(snap.APISources, s.Snapshot())
	}
	return snap
}

// Status returns the cycle-derived status alone.
func (h *HealthStatus) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// ErrorCount returns the consecutive error counter.
func (h *HealthStatus) ErrorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errorCount
}
