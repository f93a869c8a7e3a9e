// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"sync"

	"github.com/DataDog/hearth/pkg/integrations/weather/nws"
	"github.com/DataDog/hearth/pkg/integrations/weather/openmeteo"
	"github.com/DataDog/hearth/pkg/integrations/weather/sunapi"
)

// clients bundles the provider clients for one configured location. The
// NWS grid endpoints are stable per location, so they are resolved once
// per client lifetime; a settings change rebuilds the bundle.
type clients struct {
	lat, lon float64
	nws      *nws.Client
	meteo    *openmeteo.Client
	sun      *sunapi.Client

	mu   sync.Mutex
	grid *nws.GridPoints
}

func newClients(lat, lon float64) *clients {
	return &clients{
		lat:   lat,
		lon:   lon,
		nws:   nws.NewClient(""),
		meteo: openmeteo.NewClient(""),
		sun:   sunapi.NewClient(""),
	}
}

func (c *clients) gridPoints(ctx context.Context) (*nws.GridPoints, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grid != nil {
		return c.grid, nil
	}
	grid, err := c.nws.Points(ctx, c.lat, c.lon)
	if err != nil {
		return nil, err
	}
	c.grid = grid
	return grid, nil
}
