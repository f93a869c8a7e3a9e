// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package api

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/model"
)

func TestStreamDeliversBatches(t *testing.T) {
	f := newFixture(t, nil)
	wsURL := strings.Replace(f.server.URL, "http", "ws", 1) + "/api/v1/stream"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	sensor := model.Sensor{ID: 1, EntityStateID: 1, IntegrationID: "stub", IntegrationName: "light.kitchen"}
	f.bus.SetSensors([]model.Sensor{sensor})

	// The subscription registers inside the handler; keep publishing until
	// a frame comes back so the test never races the upgrade.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
			}
			f.bus.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
				sensor.Key(): {Value: "on", Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Millisecond)},
			})
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var batch []model.SensorResponse
	require.NoError(t, conn.ReadJSON(&batch))
	require.Len(t, batch, 1)
	assert.Equal(t, "on", batch[0].Value)
	assert.Equal(t, sensor.Key(), batch[0].Key)
	assert.Equal(t, sensor.ID, batch[0].SensorID)
}

func TestStreamClientCloseUnsubscribes(t *testing.T) {
	f := newFixture(t, nil)
	wsURL := strings.Replace(f.server.URL, "http", "ws", 1) + "/api/v1/stream"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, conn.Close())

	// The handler notices the close and drops its subscription; further
	// publishes must not block or panic.
	sensor := model.Sensor{ID: 1, EntityStateID: 1, IntegrationID: "stub", IntegrationName: "light.kitchen"}
	f.bus.SetSensors([]model.Sensor{sensor})
	for i := 0; i < 20; i++ {
		f.bus.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
			sensor.Key(): {Value: "on", Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Millisecond)},
		})
	}
}
