// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"strconv"
	"time"

	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/telemetry"
)

// DefaultPollInterval is the state poll cadence, overridable through the
// poll_interval attribute.
const DefaultPollInterval = 2 * time.Second

// Monitor polls the Home Assistant state list and feeds the sensor bus.
type Monitor struct {
	monitor.Base
	mgr *integrations.Manager
	bus *sensorbus.Bus
	api *monitor.APISourceHealth
	now func() time.Time
}

// NewMonitor builds the poll monitor over the integration's manager.
func NewMonitor(mgr *integrations.Manager, bus *sensorbus.Bus) *Monitor {
	m := &Monitor{
		Base: monitor.NewBase("hass-poll", DefaultPollInterval),
		mgr:  mgr,
		bus:  bus,
		now:  time.Now,
	}
	m.api = m.Health().RegisterSource("hass-api", "Home Assistant API")
	return m
}

// Interval reads the poll_interval attribute on every cycle so settings
// changes apply without a restart.
func (m *Monitor) Interval() time.Duration {
	if v := m.mgr.Attribute(AttrPollInterval); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return DefaultPollInterval
}

// DoWork fetches the remote states and pushes them onto the bus.
func (m *Monitor) DoWork(ctx context.Context) error {
	if !m.mgr.Enabled() {
		return monitor.ErrDisabled
	}
	raw, err := m.mgr.Client()
	if err != nil {
		return err
	}
	client := raw.(*Client)

	start := m.now()
	states, err := client.States(ctx)
	elapsed := m.now().Sub(start)
	telemetry.RemoteCallSeconds.WithLabelValues(IntegrationID).Observe(elapsed.Seconds())
	if err != nil {
		m.api.RecordFailure(elapsed, err)
		return err
	}
	m.api.RecordSuccess(elapsed)

	batch := make(map[model.IntegrationKey]model.SensorResponse, len(states))
	for _, s := range states {
		if _, skip := ignoredDomains[s.Domain()]; skip {
			continue
		}
		ts := s.LastChanged
		if ts.IsZero() {
			ts = start
		}
		key := model.IntegrationKey{IntegrationID: IntegrationID, IntegrationName: s.EntityID}
		batch[key] = model.SensorResponse{Value: s.State, Timestamp: ts}
	}
	m.bus.UpdateLatest(batch)
	return nil
}
