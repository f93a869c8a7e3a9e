// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"net/url"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store"
)

// IntegrationID is the registry id of the Home Assistant integration.
const IntegrationID = "hass"

// Attribute names understood by the integration.
const (
	AttrAPIURL         = "api_url"
	AttrAPIKey         = "api_key"
	AttrPollInterval   = "poll_interval"
	AttrAddAlarmEvents = "add_alarm_events"
)

func metadata() integrations.Metadata {
	return integrations.Metadata{
		ID:    IntegrationID,
		Label: "Home Assistant",
		Attributes: []integrations.AttributeSpec{
			{Name: AttrAPIURL, Label: "API base URL", IsRequired: true},
			{Name: AttrAPIKey, Label: "Long-lived access token", IsRequired: true, IsSecret: true},
			{Name: AttrPollInterval, Label: "Poll interval (seconds)", Default: "2"},
			{Name: AttrAddAlarmEvents, Label: "Add alarm events", Default: "false"},
		},
	}
}

// Gateway is the Home Assistant integration.
type Gateway struct {
	*integrations.Manager
	meta     integrations.Metadata
	engine   *SyncEngine
	mon      *Monitor
	dispatch *ControllerDispatch
}

// New wires the Home Assistant gateway over the store and sensor bus.
func New(st store.Store, bus *sensorbus.Bus) *Gateway {
	meta := metadata()
	factory := func(attrs map[string]string) (any, error) {
		if attrs[AttrAPIURL] == "" || attrs[AttrAPIKey] == "" {
			return nil, errors.NewIntegrationAttributef("%s requires %s and %s", IntegrationID, AttrAPIURL, AttrAPIKey)
		}
		return NewClient(attrs[AttrAPIURL], attrs[AttrAPIKey]), nil
	}
	probe := func(ctx context.Context, client any) error {
		return client.(*Client).Ping(ctx)
	}

	g := &Gateway{meta: meta}
	g.Manager = integrations.NewManager(meta, st, factory, probe)
	// A settings change invalidates every optimistic override.
	g.Manager.AddReloadListener(bus.ClearOverrides)

	g.engine = NewSyncEngine(st, clientLister{g.Manager}, func() bool {
		return g.Manager.Attribute(AttrAddAlarmEvents) == "true"
	})
	g.mon = NewMonitor(g.Manager, bus)
	g.dispatch = NewControllerDispatch(st, bus, func() (serviceCaller, error) {
		raw, err := g.Manager.Client()
		if err != nil {
			return nil, err
		}
		return raw.(*Client), nil
	})
	return g
}

// clientLister defers client resolution to sync time so the engine sees
// the post-reload client.
type clientLister struct {
	mgr *integrations.Manager
}

func (l clientLister) States(ctx context.Context) ([]RemoteState, error) {
	raw, err := l.mgr.Client()
	if err != nil {
		return nil, err
	}
	return raw.(*Client).States(ctx)
}

// Metadata implements integrations.Gateway.
func (g *Gateway) Metadata() integrations.Metadata { return g.meta }

// Monitors implements integrations.Gateway.
func (g *Gateway) Monitors() []monitor.Monitor { return []monitor.Monitor{g.mon} }

// Controller implements integrations.Gateway.
func (g *Gateway) Controller() integrations.Controller { return g.dispatch }

// ValidateConfiguration checks required attributes and that the URL parses.
func (g *Gateway) ValidateConfiguration(attrs map[string]string) integrations.ValidationResult {
	res := g.meta.Validate(attrs)
	if raw := attrs[AttrAPIURL]; raw != "" {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			res.Errors = append(res.Errors, "api_url must be an absolute http(s) URL")
		}
	}
	return res
}

// Sync implements integrations.Gateway.
func (g *Gateway) Sync(ctx context.Context) (*integrations.ProcessingResult, error) {
	return g.engine.Run(ctx)
}
