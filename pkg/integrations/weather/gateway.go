// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"strconv"
	"time"

	"github.com/DataDog/hearth/pkg/config"
	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/store"
)

// IntegrationID is the registry id of the weather integration.
const IntegrationID = "weather"

// Attribute names understood by the integration.
const (
	AttrLatitude  = "latitude"
	AttrLongitude = "longitude"
)

func metadata() integrations.Metadata {
	return integrations.Metadata{
		ID:    IntegrationID,
		Label: "Weather",
		Attributes: []integrations.AttributeSpec{
			{Name: AttrLatitude, Label: "Latitude", IsRequired: true},
			{Name: AttrLongitude, Label: "Longitude", IsRequired: true},
		},
	}
}

func parseCoordinates(attrs map[string]string) (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(attrs[AttrLatitude], 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, errors.NewIntegrationAttributef("latitude must be a number in [-90, 90], got %q", attrs[AttrLatitude])
	}
	lon, err = strconv.ParseFloat(attrs[AttrLongitude], 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, errors.NewIntegrationAttributef("longitude must be a number in [-180, 180], got %q", attrs[AttrLongitude])
	}
	return lat, lon, nil
}

// Gateway is the weather integration: three provider monitors feeding
// five interval windows.
type Gateway struct {
	*integrations.Manager
	meta    integrations.Metadata
	engines *Engines
	loc     *time.Location
	mons    []monitor.Monitor
}

// New wires the weather gateway over the store. Daily windows follow the
// configured household timezone.
func New(st store.Store) *Gateway {
	meta := metadata()
	loc := config.GetTimezone()

	factory := func(attrs map[string]string) (any, error) {
		lat, lon, err := parseCoordinates(attrs)
		if err != nil {
			return nil, err
		}
		return newClients(lat, lon), nil
	}
	probe := func(ctx context.Context, client any) error {
		_, err := client.(*clients).gridPoints(ctx)
		return err
	}

	g := &Gateway{
		meta:    meta,
		engines: NewEngines(loc, nil),
		loc:     loc,
	}
	g.Manager = integrations.NewManager(meta, st, factory, probe)
	g.mons = []monitor.Monitor{
		newSourceMonitor("weather-nws", NWSPollInterval, g.Manager, SourceNWS, func(ctx context.Context, c *clients) error {
			return fetchNWS(ctx, c, g.engines, time.Now)
		}),
		newSourceMonitor("weather-open-meteo", OpenMeteoPollInterval, g.Manager, SourceOpenMeteo, func(ctx context.Context, c *clients) error {
			return fetchOpenMeteo(ctx, c, g.engines, time.Now)
		}),
		newSourceMonitor("weather-sun", SunPollInterval, g.Manager, SourceSun, func(ctx context.Context, c *clients) error {
			return fetchSun(ctx, c, g.engines, loc, time.Now)
		}),
	}
	return g
}

// Data exposes the interval windows for the API layer.
func (g *Gateway) Data() *Engines { return g.engines }

// Metadata implements integrations.Gateway.
func (g *Gateway) Metadata() integrations.Metadata { return g.meta }

// Monitors implements integrations.Gateway.
func (g *Gateway) Monitors() []monitor.Monitor { return g.mons }

// Controller implements integrations.Gateway. Weather has nothing to
// control.
func (g *Gateway) Controller() integrations.Controller { return nil }

// ValidateConfiguration checks required attributes and coordinate
// ranges.
func (g *Gateway) ValidateConfiguration(attrs map[string]string) integrations.ValidationResult {
	res := g.meta.Validate(attrs)
	if attrs[AttrLatitude] != "" && attrs[AttrLongitude] != "" {
		if _, _, err := parseCoordinates(attrs); err != nil {
			res.Errors = append(res.Errors, err.Error())
		}
	}
	return res
}

// Sync refreshes every provider immediately instead of waiting for the
// next poll cycle. Per-provider failures land in the result; the others
// still run.
func (g *Gateway) Sync(ctx context.Context) (*integrations.ProcessingResult, error) {
	raw, err := g.Manager.Client()
	if err != nil {
		return nil, err
	}
	c := raw.(*clients)

	res := integrations.NewProcessingResult()
	providers := []struct {
		label string
		fetch func(context.Context, *clients) error
	}{
		{SourceNWS.Label, func(ctx context.Context, c *clients) error { return fetchNWS(ctx, c, g.engines, time.Now) }},
		{SourceOpenMeteo.Label, func(ctx context.Context, c *clients) error { return fetchOpenMeteo(ctx, c, g.engines, time.Now) }},
		{SourceSun.Label, func(ctx context.Context, c *clients) error { return fetchSun(ctx, c, g.engines, g.loc, time.Now) }},
	}
	for _, p := range providers {
		if err := p.fetch(ctx, c); err != nil {
			res.Failf("%s refresh failed: %v", p.label, err)
			continue
		}
		res.Logf("%s refreshed", p.label)
	}
	return res, nil
}
