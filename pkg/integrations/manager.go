// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"context"
	"sync"

	"github.com/DataDog/hearth/pkg/config"
	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/util/log"
)

// ClientFactory builds the integration's remote client from its current
// attribute snapshot.
type ClientFactory func(attrs map[string]string) (any, error)

// ConnectionProbe makes one cheap remote call to verify the client works.
type ConnectionProbe func(ctx context.Context, client any) error

// Manager owns one integration's persisted configuration, its remote
// client, and the health derived on every reload. Gateways embed it for
// the Lifecycle surface.
type Manager struct {
	mu      sync.RWMutex
	meta    Metadata
	store   store.Store
	factory ClientFactory
	probe   ConnectionProbe

	enabled bool
	attrs   map[string]string
	client  any
	health  IntegrationHealth

	listenMu  sync.Mutex
	listeners []func()
}

// NewManager builds a manager for the integration described by meta.
// Factory and probe may be nil for integrations without a remote client.
func NewManager(meta Metadata, st store.Store, factory ClientFactory, probe ConnectionProbe) *Manager {
	return &Manager{
		meta:    meta,
		store:   st,
		factory: factory,
		probe:   probe,
		attrs:   map[string]string{},
		health:  HealthDisabled,
	}
}

// IntegrationID returns the integration's registry id.
func (m *Manager) IntegrationID() string { return m.meta.ID }

// Enabled reports the persisted on/off state.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// HealthStatus returns the health derived on the last reload.
func (m *Manager) HealthStatus() IntegrationHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.health
}

// Attribute returns one configuration value, "" when unset.
func (m *Manager) Attribute(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attrs[name]
}

// Attributes returns a copy of the configuration snapshot.
func (m *Manager) Attributes() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// Client returns the remote client, building it on first use. Disabled
// integrations have no client.
func (m *Manager) Client() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return nil, errors.NewIntegrationDisabledf("integration %s is disabled", m.meta.ID)
	}
	if m.client != nil {
		return m.client, nil
	}
	if m.factory == nil {
		return nil, errors.NewIntegrationf("integration %s has no remote client", m.meta.ID)
	}
	client, err := m.factory(m.attrs)
	if err != nil {
		return nil, errors.NewIntegrationAttributef("building %s client: %v", m.meta.ID, err)
	}
	m.client = client
	return client, nil
}

// AddReloadListener subscribes fn to configuration changes. Listeners run
// after every reload, outside the manager lock, and must tolerate being
// called while a sibling still sees the old snapshot.
func (m *Manager) AddReloadListener(fn func()) {
	m.listenMu.Lock()
	defer m.listenMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// NotifySettingsChanged fires the reload listeners.
func (m *Manager) NotifySettingsChanged() {
	m.listenMu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.listenMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Enable persists attrs (with declared defaults applied) and the enabled
// flag, then reloads the client and health.
func (m *Manager) Enable(ctx context.Context, attrs map[string]string) error {
	return m.persist(ctx, true, m.meta.ApplyDefaults(attrs))
}

// Disable persists the off flag and drops the client.
func (m *Manager) Disable(ctx context.Context) error {
	return m.persist(ctx, false, nil)
}

// UpdateSettings persists a new attribute snapshot without changing the
// enabled flag.
func (m *Manager) UpdateSettings(ctx context.Context, attrs map[string]string) error {
	return m.persist(ctx, m.Enabled(), m.meta.ApplyDefaults(attrs))
}

func (m *Manager) persist(ctx context.Context, enabled bool, attrs map[string]string) error {
	err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.SetIntegrationEnabled(ctx, m.meta.ID, enabled); err != nil {
			return err
		}
		for name, value := range attrs {
			spec, _ := m.meta.Spec(name)
			attr := model.IntegrationAttribute{
				IntegrationID: m.meta.ID,
				Name:          name,
				Value:         value,
				IsRequired:    spec.IsRequired,
				IsSecret:      spec.IsSecret,
			}
			if err := tx.PutIntegrationAttribute(ctx, attr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return m.Reload(ctx)
}

// Reload re-reads the persisted configuration, rebuilds the remote
// client, probes it, and derives health. Listeners fire after the new
// snapshot is visible.
func (m *Manager) Reload(ctx context.Context) error {
	enabled, attrs, err := m.readPersisted(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.enabled = enabled
	m.attrs = attrs
	m.client = nil
	m.health = m.deriveHealthLocked(ctx)
	health := m.health
	m.mu.Unlock()

	log.Infof("integration %s reloaded: enabled=%v health=%s", m.meta.ID, enabled, health)
	m.NotifySettingsChanged()
	return nil
}

func (m *Manager) readPersisted(ctx context.Context) (bool, map[string]string, error) {
	enabled := false
	record, err := m.store.GetIntegrationRecord(ctx, m.meta.ID)
	switch {
	case err == nil:
		enabled = record.Enabled
	case errors.IsNotFound(err):
		// Never configured; stays disabled.
	default:
		return false, nil, err
	}

	rows, err := m.store.ListIntegrationAttributes(ctx, m.meta.ID)
	if err != nil {
		return false, nil, err
	}
	attrs := make(map[string]string, len(rows))
	for _, row := range rows {
		attrs[row.Name] = row.Value
	}
	return enabled, m.meta.ApplyDefaults(attrs), nil
}

// deriveHealthLocked classifies the integration from a fresh client
// build and probe. Caller holds the write lock.
func (m *Manager) deriveHealthLocked(ctx context.Context) IntegrationHealth {
	if !m.enabled {
		return HealthDisabled
	}
	if res := m.meta.Validate(m.attrs); !res.Valid() {
		return HealthConfigError
	}
	if m.factory == nil {
		return HealthHealthy
	}
	client, err := m.factory(m.attrs)
	if err != nil {
		return HealthConfigError
	}
	m.client = client
	if m.probe == nil {
		return HealthHealthy
	}

	probeCtx, cancel := context.WithTimeout(ctx, config.GetRemoteTimeout())
	defer cancel()
	if err := m.probe(probeCtx, client); err != nil {
		log.Warnf("integration %s probe failed: %v", m.meta.ID, err)
		switch errors.ClassifyRemote(err) {
		case errors.RemoteAuthFailure, errors.RemoteConnectivityFailure:
			return HealthConnectionError
		default:
			return HealthTemporaryError
		}
	}
	return HealthHealthy
}
