// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package sensorbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/model"
)

var kitchenKey = model.IntegrationKey{IntegrationID: "hass", IntegrationName: "light.kitchen"}

var kitchenSensor = model.Sensor{ID: 1, EntityStateID: 10, Name: "kitchen", IntegrationID: "hass", IntegrationName: "light.kitchen"}

func newTestBus(opts Options) *Bus {
	b := New(opts)
	b.SetSensors([]model.Sensor{kitchenSensor})
	return b
}

func respAt(value string, ts time.Time) model.SensorResponse {
	return model.SensorResponse{Key: kitchenKey, Value: value, Timestamp: ts}
}

func TestUpdateLatestKeepsRingMostRecentFirst(t *testing.T) {
	b := newTestBus(Options{HistorySize: 3})
	base := time.Now()

	for i, v := range []string{"off", "on", "off", "on"} {
		b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
			kitchenKey: respAt(v, base.Add(time.Duration(i) * time.Second)),
		})
	}

	got := b.LatestFor(context.Background(), []model.Sensor{kitchenSensor})
	ring := got[kitchenSensor]
	require.Len(t, ring, 3, "ring truncated to history size")
	assert.Equal(t, "on", ring[0].Value)
	assert.Equal(t, "off", ring[1].Value)
	assert.Equal(t, int64(1), ring[0].SensorID)
}

func TestTimestampsAreMonotonic(t *testing.T) {
	b := newTestBus(Options{})
	base := time.Now()

	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("new", base.Add(time.Second))})
	// a late arrival from a slower monitor
	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("stale", base)})

	ring := b.LatestFor(context.Background(), []model.Sensor{kitchenSensor})[kitchenSensor]
	require.NotEmpty(t, ring)
	assert.Equal(t, "new", ring[0].Value)
	for i := 1; i < len(ring); i++ {
		assert.False(t, ring[i-1].Timestamp.Before(ring[i].Timestamp))
	}
}

func TestOverrideWindow(t *testing.T) {
	b := newTestBus(Options{OverrideTTL: 60 * time.Millisecond})
	polled := respAt("off", time.Now())
	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: polled})

	b.Override(kitchenSensor.EntityStateID, "on")

	ring := b.LatestFor(context.Background(), []model.Sensor{kitchenSensor})[kitchenSensor]
	require.NotEmpty(t, ring)
	assert.Equal(t, "on", ring[0].Value, "override masks the polled value")
	assert.Equal(t, polled.Timestamp.Unix(), ring[0].Timestamp.Unix(), "timestamp preserved")

	time.Sleep(90 * time.Millisecond)
	ring = b.LatestFor(context.Background(), []model.Sensor{kitchenSensor})[kitchenSensor]
	assert.Equal(t, "off", ring[0].Value, "expired override reveals the prior polled value")
}

func TestClearOverrides(t *testing.T) {
	b := newTestBus(Options{})
	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("off", time.Now())})
	b.Override(kitchenSensor.EntityStateID, "on")
	b.ClearOverrides()

	ring := b.LatestFor(context.Background(), []model.Sensor{kitchenSensor})[kitchenSensor]
	assert.Equal(t, "off", ring[0].Value)
}

func TestSubscribeReceivesAcceptedOnly(t *testing.T) {
	b := newTestBus(Options{})
	ch := b.Subscribe("test")
	base := time.Now()

	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("on", base.Add(time.Second))})
	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("late", base)})

	select {
	case batch := <-ch:
		require.Len(t, batch, 1)
		assert.Equal(t, "on", batch[0].Value)
	case <-time.After(time.Second):
		t.Fatal("no batch delivered")
	}
	select {
	case batch := <-ch:
		t.Fatalf("discarded response delivered: %v", batch)
	default:
	}

	b.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestLatestAllCoversIndexedSensors(t *testing.T) {
	b := newTestBus(Options{})
	b.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{kitchenKey: respAt("on", time.Now())})

	all := b.LatestAll(context.Background())
	require.Len(t, all, 1)
	assert.Contains(t, all, kitchenSensor)
}
