// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/store/memory"
)

type recordingCaller struct {
	domain, service, entityID string
	data                      map[string]any
	err                       error
	calls                     int
}

func (c *recordingCaller) CallService(_ context.Context, domain, service, entityID string, data map[string]any) error {
	c.calls++
	c.domain, c.service, c.entityID, c.data = domain, service, entityID, data
	return c.err
}

// seedController creates entity → state → controller for one remote id
// and returns the state id.
func seedController(t *testing.T, st store.Store, remoteID string) int64 {
	t.Helper()
	var stateID int64
	require.NoError(t, st.RunInTransaction(context.Background(), func(tx store.Tx) error {
		e := &model.Entity{Name: "seed", EntityType: model.EntityTypeLight, IntegrationID: IntegrationID, IntegrationName: "seed-" + remoteID}
		if err := tx.CreateEntity(context.Background(), e); err != nil {
			return err
		}
		s := &model.EntityState{EntityID: e.ID, StateType: model.StateTypeOnOff, Name: "seed", ValueRange: model.OnOffRange}
		if err := tx.CreateEntityState(context.Background(), s); err != nil {
			return err
		}
		stateID = s.ID
		return tx.CreateController(context.Background(), &model.Controller{
			EntityStateID:   s.ID,
			Name:            "seed",
			IntegrationID:   IntegrationID,
			IntegrationName: remoteID,
		})
	}))
	return stateID
}

func dispatchFixture(t *testing.T, remoteID string) (*ControllerDispatch, *recordingCaller, *sensorbus.Bus, int64) {
	t.Helper()
	st := memory.New()
	stateID := seedController(t, st, remoteID)
	bus := sensorbus.New(sensorbus.Options{})
	caller := &recordingCaller{}
	d := NewControllerDispatch(st, bus, func() (serviceCaller, error) { return caller, nil })
	return d, caller, bus, stateID
}

func key(remoteID string) model.IntegrationKey {
	return model.IntegrationKey{IntegrationID: IntegrationID, IntegrationName: remoteID}
}

func TestControlDomainFallbackOnOff(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")

	res, err := d.Control(context.Background(), key("light.kitchen"), nil, "ON")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "on", res.NewValue)
	assert.Equal(t, "light", caller.domain)
	assert.Equal(t, "turn_on", caller.service)
	assert.Equal(t, "light.kitchen", caller.entityID)
}

func TestControlNumericBrightnessFallback(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")

	res, err := d.Control(context.Background(), key("light.kitchen"), nil, "60")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "60", res.NewValue)
	assert.Equal(t, "turn_on", caller.service)
	assert.Equal(t, 60.0, caller.data["brightness_pct"])
}

func TestControlBrightnessRangeError(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")

	res, err := d.Control(context.Background(), key("light.kitchen"), nil, "150")
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "out of range")
	assert.Zero(t, caller.calls, "range errors fail locally, no remote call")
}

func TestControlUnknownValue(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")

	res, err := d.Control(context.Background(), key("light.kitchen"), nil, "sideways")
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "unknown control value")
	assert.Zero(t, caller.calls)
}

func TestControlPayloadServices(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "cover.garage")
	payload := map[string]any{
		"is_controllable": true,
		"open_service":    "open_cover",
		"close_service":   "close_cover",
	}

	res, err := d.Control(context.Background(), key("cover.garage"), payload, "open")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "open", res.NewValue)
	assert.Equal(t, "cover", caller.domain)
	assert.Equal(t, "open_cover", caller.service)
}

func TestControlPayloadOverridesDomainFallback(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")
	payload := map[string]any{
		"is_controllable": true,
		"on_service":      "custom_on",
		"off_service":     "custom_off",
	}

	res, err := d.Control(context.Background(), key("light.kitchen"), payload, "on")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "custom_on", caller.service, "declared service wins over the light fallback")

	res, err = d.Control(context.Background(), key("light.kitchen"), payload, "off")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "custom_off", caller.service)
}

func TestControlPayloadBrightnessRidesOnService(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "light.kitchen")
	payload := map[string]any{
		"is_controllable":     true,
		"on_service":          "turn_on",
		"off_service":         "turn_off",
		"domain":              "light",
		"supports_brightness": true,
	}

	res, err := d.Control(context.Background(), key("light.kitchen"), payload, "40")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "40", res.NewValue)
	assert.Equal(t, "turn_on", caller.service)
	assert.Equal(t, 40.0, caller.data["brightness_pct"])
}

func TestControlPayloadVolume(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "media_player.den")
	payload := map[string]any{
		"is_controllable": true,
		"set_service":     "volume_set",
		"volume_level":    nil,
	}

	res, err := d.Control(context.Background(), key("media_player.den"), payload, "0.4")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "volume_set", caller.service)
	assert.Equal(t, 0.4, caller.data["volume_level"])

	res, err = d.Control(context.Background(), key("media_player.den"), payload, "1.4")
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1, "volume over 1.0 rejected")
}

func TestControlLockFallback(t *testing.T) {
	d, caller, _, _ := dispatchFixture(t, "lock.front")

	res, err := d.Control(context.Background(), key("lock.front"), nil, "unlock")
	require.NoError(t, err)
	assert.Equal(t, "unlocked", res.NewValue)
	assert.Equal(t, "unlock", caller.service)
}

func TestControlSuccessInstallsOverride(t *testing.T) {
	d, _, bus, stateID := dispatchFixture(t, "light.kitchen")

	sensor := model.Sensor{ID: 7, EntityStateID: stateID, IntegrationID: IntegrationID, IntegrationName: "light.kitchen"}
	bus.SetSensors([]model.Sensor{sensor})
	bus.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
		sensor.Key(): {Value: "off", Timestamp: time.Now()},
	})

	_, err := d.Control(context.Background(), key("light.kitchen"), nil, "on")
	require.NoError(t, err)

	latest := bus.LatestFor(context.Background(), []model.Sensor{sensor})
	require.Len(t, latest[sensor], 1)
	assert.Equal(t, "on", latest[sensor][0].Value, "override masks the stale poll")
}

func TestControlRemoteFailurePopulatesErrors(t *testing.T) {
	d, caller, bus, stateID := dispatchFixture(t, "light.kitchen")
	caller.err = errors.NewTemporaryf("503 from remote")

	sensor := model.Sensor{ID: 7, EntityStateID: stateID, IntegrationID: IntegrationID, IntegrationName: "light.kitchen"}
	bus.SetSensors([]model.Sensor{sensor})
	bus.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
		sensor.Key(): {Value: "off", Timestamp: time.Now()},
	})

	res, err := d.Control(context.Background(), key("light.kitchen"), nil, "on")
	require.NoError(t, err, "remote failures report through the result")
	require.Len(t, res.Errors, 1)

	latest := bus.LatestFor(context.Background(), []model.Sensor{sensor})
	assert.Equal(t, "off", latest[sensor][0].Value, "no override on failure")
}

func TestControlUnknownController(t *testing.T) {
	d, _, _, _ := dispatchFixture(t, "light.kitchen")

	_, err := d.Control(context.Background(), key("light.nope"), nil, "on")
	assert.True(t, errors.IsNotFound(err))
}
