// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/DataDog/hearth/pkg/status/health"
	"github.com/DataDog/hearth/pkg/telemetry"
	"github.com/DataDog/hearth/pkg/util/log"
)

// ErrDisabled is returned from DoWork when the monitor's integration is
// switched off: the cycle did no work and health shows DISABLED rather
// than a success or failure.
var ErrDisabled = errors.New("monitor disabled")

// Base carries the common monitor state. Concrete monitors embed it and
// implement Initialize/DoWork/Cleanup.
type Base struct {
	id       string
	interval time.Duration
	health   *HealthStatus
	stopped  atomic.Bool
}

// NewBase returns a Base with a fresh health record.
func NewBase(id string, interval time.Duration) Base {
	return Base{
		id:       id,
		interval: interval,
		health:   NewHealthStatus(id),
	}
}

// ID implements Monitor.
func (b *Base) ID() string { return b.id }

// Interval implements Monitor.
func (b *Base) Interval() time.Duration { return b.interval }

// Health implements Monitor.
func (b *Base) Health() *HealthStatus { return b.health }

// Stop implements Monitor: idempotent, non-blocking; the loop exits after
// the current sleep.
func (b *Base) Stop() { b.stopped.Store(true) }

// Stopped reports whether Stop was requested.
func (b *Base) Stopped() bool { return b.stopped.Load() }

// Initialize is a no-op by default.
func (b *Base) Initialize(context.Context) error { return nil }

// Cleanup is a no-op by default.
func (b *Base) Cleanup() {}

// Run drives one monitor's lifecycle:
//
//	initialize → loop { do_work; record; sleep } → cleanup
//
// No DoWork error terminates the loop; each is classified and recorded on
// the health snapshot. Context cancellation propagates through the sleep,
// runs Cleanup and marks the monitor ERROR("cancelled"). The optional
// heartbeat registry receives a beat per successful cycle.
func Run(ctx context.Context, m Monitor, heartbeats *health.Registry) {
	if heartbeats != nil {
		heartbeats.Register(m.ID())
	}
	if err := m.Initialize(ctx); err != nil {
		log.Errorf("monitor %s failed to initialize: %v", m.ID(), err)
		m.Health().RecordError(err)
	}

	defer m.Cleanup()
	for {
		if s, ok := m.(interface{ Stopped() bool }); ok && s.Stopped() {
			log.Debugf("monitor %s stopped", m.ID())
			return
		}
		runOnce(ctx, m, heartbeats)

		select {
		case <-ctx.Done():
			m.Health().MarkError("cancelled")
			log.Infof("monitor %s cancelled", m.ID())
			return
		case <-time.After(m.Interval()):
		}
	}
}

func runOnce(ctx context.Context, m Monitor, heartbeats *health.Registry) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in monitor %s: %v", m.ID(), r)
			log.Errorf("%v", err)
			m.Health().RecordError(err)
			telemetry.MonitorRuns.WithLabelValues(m.ID(), string(StatusError)).Inc()
		}
	}()

	if err := m.DoWork(ctx); err != nil {
		if errors.Is(err, ErrDisabled) {
			m.Health().MarkDisabled()
			telemetry.MonitorRuns.WithLabelValues(m.ID(), string(StatusDisabled)).Inc()
			return
		}
		if ctx.Err() != nil {
			// cancellation mid-call is not a work failure
			return
		}
		log.Warnf("monitor %s work cycle failed: %v", m.ID(), err)
		m.Health().RecordError(err)
		telemetry.MonitorRuns.WithLabelValues(m.ID(), string(m.Health().Status())).Inc()
		return
	}
	m.Health().RecordSuccess()
	if heartbeats != nil {
		heartbeats.Beat(m.ID())
	}
	telemetry.MonitorRuns.WithLabelValues(m.ID(), string(StatusHealthy)).Inc()
}
