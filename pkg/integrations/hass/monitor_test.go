// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store/memory"
)

func TestMonitorDisabledSkipsWork(t *testing.T) {
	g := New(memory.New(), sensorbus.New(sensorbus.Options{}))
	err := g.mon.DoWork(context.Background())
	assert.ErrorIs(t, err, monitor.ErrDisabled)
}

func TestMonitorPollFeedsBus(t *testing.T) {
	changed := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/" {
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "API running."})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"entity_id": "light.kitchen", "state": "on", "last_changed": changed},
			{"entity_id": "automation.morning", "state": "on"},
		})
	}))
	defer srv.Close()

	bus := sensorbus.New(sensorbus.Options{})
	g := New(memory.New(), bus)
	require.NoError(t, g.Enable(context.Background(), map[string]string{
		AttrAPIURL: srv.URL,
		AttrAPIKey: "tok",
	}))

	sensor := model.Sensor{ID: 1, EntityStateID: 1, IntegrationID: IntegrationID, IntegrationName: "light.kitchen"}
	bus.SetSensors([]model.Sensor{sensor})

	require.NoError(t, g.mon.DoWork(context.Background()))

	latest := bus.LatestFor(context.Background(), []model.Sensor{sensor})
	require.Len(t, latest[sensor], 1)
	assert.Equal(t, "on", latest[sensor][0].Value)
	assert.Equal(t, changed, latest[sensor][0].Timestamp)

	snap := g.mon.Health().Snapshot()
	require.Len(t, snap.APISources, 1)
	assert.Equal(t, monitor.SourceHealthy, snap.APISources[0].Status)
}

func TestMonitorIntervalAttributeOverride(t *testing.T) {
	g := New(memory.New(), sensorbus.New(sensorbus.Options{}))
	assert.Equal(t, DefaultPollInterval, g.mon.Interval())

	require.NoError(t, g.Enable(context.Background(), map[string]string{
		AttrAPIURL:       "http://ha.local:8123",
		AttrAPIKey:       "tok",
		AttrPollInterval: "5",
	}))
	assert.Equal(t, 5*time.Second, g.mon.Interval())
}
