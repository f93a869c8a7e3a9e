// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"context"
	"strings"
	"sync"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/telemetry"
	"github.com/DataDog/hearth/pkg/util/log"
)

// secretMask replaces secret attribute values on the read surface.
const secretMask = "********"

// Info is one integration's read-surface row.
type Info struct {
	Metadata
	Enabled    bool              `json:"enabled"`
	Health     IntegrationHealth `json:"health"`
	Attributes map[string]string `json:"attribute_values"`
}

// Registry holds the shipped gateways and routes API operations to them.
// Registration happens once at startup; everything else is read-mostly.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	gateways map[string]Gateway
	bus      *sensorbus.Bus
}

// NewRegistry returns an empty registry over the process's sensor bus.
func NewRegistry(bus *sensorbus.Bus) *Registry {
	return &Registry{gateways: map[string]Gateway{}, bus: bus}
}

// Register adds a gateway. Duplicate ids are a wiring bug and are ignored
// with a log line.
func (r *Registry) Register(g Gateway) {
	id := g.Metadata().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gateways[id]; ok {
		log.Errorf("integration %s registered twice, ignoring", id)
		return
	}
	r.gateways[id] = g
	r.order = append(r.order, id)
}

// Get returns the gateway for id.
func (r *Registry) Get(id string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[id]
	if !ok {
		return nil, errors.NewIntegrationf("unknown integration %q", id)
	}
	return g, nil
}

// All returns the gateways in registration order.
func (r *Registry) All() []Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Gateway, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.gateways[id])
	}
	return out
}

// List returns the read-surface rows in registration order, secrets masked.
func (r *Registry) List() []Info {
	gateways := r.All()
	out := make([]Info, 0, len(gateways))
	for _, g := range gateways {
		out = append(out, describe(g))
	}
	return out
}

func describe(g Gateway) Info {
	meta := g.Metadata()
	attrs := map[string]string{}
	if lc, ok := g.(interface{ Attributes() map[string]string }); ok {
		attrs = lc.Attributes()
	}
	for name, value := range attrs {
		if spec, ok := meta.Spec(name); ok && spec.IsSecret && value != "" {
			attrs[name] = secretMask
		}
	}
	return Info{Metadata: meta, Enabled: g.Enabled(), Health: g.HealthStatus(), Attributes: attrs}
}

// Describe returns one integration's read-surface row.
func (r *Registry) Describe(id string) (Info, error) {
	g, err := r.Get(id)
	if err != nil {
		return Info{}, err
	}
	return describe(g), nil
}

// Enable validates attrs through the gateway and turns it on.
func (r *Registry) Enable(ctx context.Context, id string, attrs map[string]string) error {
	g, err := r.Get(id)
	if err != nil {
		return err
	}
	if res := g.ValidateConfiguration(attrs); !res.Valid() {
		return errors.NewIntegrationAttributef("invalid configuration for %s: %s", id, strings.Join(res.Errors, "; "))
	}
	return g.Enable(ctx, attrs)
}

// Disable turns the integration off. Its monitors observe the flag on
// their next cycle.
func (r *Registry) Disable(ctx context.Context, id string) error {
	g, err := r.Get(id)
	if err != nil {
		return err
	}
	return g.Disable(ctx)
}

// UpdateSettings validates and persists a new attribute snapshot.
func (r *Registry) UpdateSettings(ctx context.Context, id string, attrs map[string]string) error {
	g, err := r.Get(id)
	if err != nil {
		return err
	}
	if res := g.ValidateConfiguration(attrs); !res.Valid() {
		return errors.NewIntegrationAttributef("invalid configuration for %s: %s", id, strings.Join(res.Errors, "; "))
	}
	return g.UpdateSettings(ctx, attrs)
}

// Health returns the integration's coarse health.
func (r *Registry) Health(id string) (IntegrationHealth, error) {
	g, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return g.HealthStatus(), nil
}

// Sync runs the integration's reconciliation. Disabled integrations
// refuse; a busy sync lock surfaces as a temporary error.
func (r *Registry) Sync(ctx context.Context, id string) (*ProcessingResult, error) {
	g, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !g.Enabled() {
		return nil, errors.NewIntegrationDisabledf("integration %s is disabled", id)
	}
	telemetry.SyncRuns.WithLabelValues(id).Inc()
	return g.Sync(ctx)
}

// Control routes a write command to the gateway owning the key's
// integration id.
func (r *Registry) Control(ctx context.Context, key model.IntegrationKey, payload map[string]any, value string) (*ControlResult, error) {
	g, err := r.Get(key.IntegrationID)
	if err != nil {
		return nil, err
	}
	if !g.Enabled() {
		return nil, errors.NewIntegrationDisabledf("integration %s is disabled", key.IntegrationID)
	}
	ctrl := g.Controller()
	if ctrl == nil {
		return nil, errors.NewIntegrationf("integration %s accepts no control commands", key.IntegrationID)
	}

	res, err := ctrl.Control(ctx, key, payload, value)
	outcome := "ok"
	if err != nil || (res != nil && len(res.Errors) > 0) {
		outcome = "error"
	}
	telemetry.ControlDispatches.WithLabelValues(key.IntegrationID, outcome).Inc()
	return res, err
}

// LatestSensorResponses snapshots the bus, filtered to keys when any are
// given.
func (r *Registry) LatestSensorResponses(ctx context.Context, keys []model.IntegrationKey) (map[model.Sensor][]model.SensorResponse, error) {
	all := r.bus.LatestAll(ctx)
	if len(keys) == 0 {
		return all, nil
	}
	want := make(map[model.IntegrationKey]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make(map[model.Sensor][]model.SensorResponse, len(keys))
	for sensor, ring := range all {
		if _, ok := want[sensor.Key()]; ok {
			out[sensor] = ring
		}
	}
	return out, nil
}
