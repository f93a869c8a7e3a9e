// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationKeyRoundTrip(t *testing.T) {
	key := IntegrationKey{IntegrationID: "hass", IntegrationName: "light.kitchen"}
	assert.Equal(t, "hass.light.kitchen", key.String())

	parsed, err := ParseIntegrationKey("hass.light.kitchen")
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestParseIntegrationKeyRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "hass", "hass.", ".light.kitchen"} {
		_, err := ParseIntegrationKey(s)
		assert.Error(t, err, s)
	}
}

func TestEntityTypeLabel(t *testing.T) {
	assert.Equal(t, "On Off Switch", EntityTypeOnOffSwitch.Label())
	assert.Equal(t, "Area", EntityTypeArea.Label())
	assert.True(t, EntityTypeMotionSensor.Valid())
	assert.False(t, EntityType("spaceship").Valid())
}

func TestValueRangeText(t *testing.T) {
	r := ValueRange{Values: []string{"on", "off"}}
	text, err := r.MarshalText()
	require.NoError(t, err)

	var back ValueRange
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, r, back)
	assert.False(t, back.IsFreeForm())

	var free ValueRange
	require.NoError(t, free.UnmarshalText(nil))
	assert.True(t, free.IsFreeForm())
}

func TestDefaultDelegateTypesCoverAlarmStates(t *testing.T) {
	for _, st := range []EntityStateType{StateTypeMovement, StateTypePresence, StateTypeSoundLevel, StateTypeVideoStream} {
		assert.Equal(t, EntityTypeArea, DefaultDelegateTypes[st])
	}
	_, ok := DefaultDelegateTypes[StateTypeOnOff]
	assert.False(t, ok)
}
