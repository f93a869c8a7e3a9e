// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DataDog/hearth/pkg/status/health"
	"github.com/DataDog/hearth/pkg/util/log"
)

// Manager owns every monitor's goroutine. Each monitor starts exactly once;
// with the suppress flag set (tests, dev) monitors are registered but never
// started.
type Manager struct {
	mu       sync.Mutex
	monitors []Monitor
	started  map[string]bool
	suppress bool

	heartbeats *health.Registry
	group      *errgroup.Group
	runCtx     context.Context
	cancel     context.CancelFunc
	running    bool
}

// NewManager returns a manager. suppress keeps monitors from starting.
func NewManager(suppress bool) *Manager {
	return &Manager{
		started:    map[string]bool{},
		suppress:   suppress,
		heartbeats: health.NewRegistry(),
	}
}

// Register adds monitors. Duplicate IDs are rejected with a log line; the
// first registration wins.
func (m *Manager) Register(monitors ...Monitor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mon := range monitors {
		if mon == nil {
			continue
		}
		if m.started[mon.ID()] {
			log.Warnf("monitor %s already registered, ignoring", mon.ID())
			continue
		}
		m.started[mon.ID()] = true
		m.monitors = append(m.monitors, mon)
		if m.running && !m.suppress {
			m.startLocked(mon)
		}
	}
}

// Start launches one goroutine per registered monitor.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.group, _ = errgroup.WithContext(runCtx)
	m.runCtx = runCtx
	m.running = true

	if m.suppress {
		log.Infof("monitors suppressed, %d registered but not started", len(m.monitors))
		return
	}
	for _, mon := range m.monitors {
		m.startLocked(mon)
	}
	log.Infof("started %d monitors", len(m.monitors))
}

func (m *Manager) startLocked(mon Monitor) {
	m.group.Go(func() error {
		Run(m.runCtx, mon, m.heartbeats)
		return nil
	})
}

// Stop cancels every monitor and waits for the loops to drain. Bounded by
// one interval plus one in-flight remote call per monitor.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	group := m.group
	for _, mon := range m.monitors {
		mon.Stop()
	}
	m.mu.Unlock()

	cancel()
	if group != nil {
		group.Wait() //nolint:errcheck
	}
	log.Info("all monitors stopped")
}

// Providers returns a read-only snapshot of the registered monitors.
func (m *Manager) Providers() []HealthStatusProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HealthStatusProvider, 0, len(m.monitors))
	for _, mon := range m.monitors {
		out = append(out, mon)
	}
	return out
}

// Heartbeats exposes the heartbeat registry for the status surface.
func (m *Manager) Heartbeats() *health.Registry {
	return m.heartbeats
}
