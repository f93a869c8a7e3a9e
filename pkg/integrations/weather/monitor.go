// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"time"

	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/interval"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/telemetry"
)

// Poll cadences per provider. Forecasts move slowly; solar events move
// once a day.
const (
	NWSPollInterval       = 10 * time.Minute
	OpenMeteoPollInterval = 30 * time.Minute
	SunPollInterval       = time.Hour
)

// sourceMonitor runs one provider's fetch on a fixed cadence and tracks
// its API health.
type sourceMonitor struct {
	monitor.Base
	mgr       *integrations.Manager
	api       *monitor.APISourceHealth
	now       func() time.Time
	clientsFn func() (*clients, error)
	fetch     func(ctx context.Context, c *clients) error
}

func newSourceMonitor(id string, every time.Duration, mgr *integrations.Manager, src interval.Source, fetch func(context.Context, *clients) error) *sourceMonitor {
	m := &sourceMonitor{
		Base:  monitor.NewBase(id, every),
		mgr:   mgr,
		now:   time.Now,
		fetch: fetch,
	}
	m.api = m.Health().RegisterSource(src.ID, src.Label)
	m.clientsFn = func() (*clients, error) {
		raw, err := mgr.Client()
		if err != nil {
			return nil, err
		}
		return raw.(*clients), nil
	}
	return m
}

// DoWork runs one fetch cycle against the provider.
func (m *sourceMonitor) DoWork(ctx context.Context) error {
	if !m.mgr.Enabled() {
		return monitor.ErrDisabled
	}
	c, err := m.clientsFn()
	if err != nil {
		return err
	}

	start := m.now()
	err = m.fetch(ctx, c)
	elapsed := m.now().Sub(start)
	telemetry.RemoteCallSeconds.WithLabelValues(IntegrationID).Observe(elapsed.Seconds())
	if err != nil {
		m.api.RecordFailure(elapsed, err)
		return err
	}
	m.api.RecordSuccess(elapsed)
	return nil
}
