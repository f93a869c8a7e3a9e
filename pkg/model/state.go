// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/DataDog/hearth/pkg/errors"
)

// EntityStateType determines rendering and aggregation rules for a state.
type EntityStateType string

// The closed set of state types.
const (
	StateTypeAirPressure    EntityStateType = "air_pressure"
	StateTypeBandwidthUsage EntityStateType = "bandwidth_usage"
	StateTypeBlob           EntityStateType = "blob"
	StateTypeConnectivity   EntityStateType = "connectivity"
	StateTypeDatetime       EntityStateType = "datetime"
	StateTypeDiscrete       EntityStateType = "discrete"
	StateTypeElectricUsage  EntityStateType = "electric_usage"
	StateTypeHighLow        EntityStateType = "high_low"
	StateTypeHumidity       EntityStateType = "humidity"
	StateTypeLightDimmer    EntityStateType = "light_dimmer"
	StateTypeLightLevel     EntityStateType = "light_level"
	StateTypeMoisture       EntityStateType = "moisture"
	StateTypeMovement       EntityStateType = "movement"
	StateTypeMultivalued    EntityStateType = "multivalued"
	StateTypeNotice         EntityStateType = "notice"
	StateTypeOnOff          EntityStateType = "on_off"
	StateTypeOpenClose      EntityStateType = "open_close"
	StateTypePresence       EntityStateType = "presence"
	StateTypeSoundLevel     EntityStateType = "sound_level"
	StateTypeTemperature    EntityStateType = "temperature"
	StateTypeVideoStream    EntityStateType = "video_stream"
	StateTypeWindSpeed      EntityStateType = "wind_speed"
)

// Label returns the display form of the state type.
func (t EntityStateType) Label() string {
	return labelize(string(t))
}

// ValueRange describes the values a state can take: a discrete list, a
// value→label map, or free-form when both are empty.
type ValueRange struct {
	Values []string          `json:"values,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// IsFreeForm reports whether the range places no constraint on values.
func (r ValueRange) IsFreeForm() bool {
	return len(r.Values) == 0 && len(r.Labels) == 0
}

// MarshalText stores the descriptor as JSON text.
func (r ValueRange) MarshalText() ([]byte, error) {
	return json.Marshal(struct {
		Values []string          `json:"values,omitempty"`
		Labels map[string]string `json:"labels,omitempty"`
	}{r.Values, r.Labels})
}

// UnmarshalText restores the descriptor from JSON text. Empty input is free-form.
func (r *ValueRange) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = ValueRange{}
		return nil
	}
	var aux struct {
		Values []string          `json:"values,omitempty"`
		Labels map[string]string `json:"labels,omitempty"`
	}
	if err := json.Unmarshal(text, &aux); err != nil {
		return err
	}
	r.Values = aux.Values
	r.Labels = aux.Labels
	return nil
}

// Value stores the descriptor as JSON for the sql driver.
func (r ValueRange) Value() (driver.Value, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan restores the descriptor from a JSON column.
func (r *ValueRange) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = ValueRange{}
		return nil
	case []byte:
		return r.UnmarshalText(v)
	case string:
		return r.UnmarshalText([]byte(v))
	default:
		return errors.NewStoragef("cannot scan %T into ValueRange", src)
	}
}

// OnOffRange is the range shared by switch-like states.
var OnOffRange = ValueRange{Values: []string{"on", "off"}}

// OpenCloseRange is the range shared by opening-like states.
var OpenCloseRange = ValueRange{Values: []string{"open", "closed"}}

// EntityState is a hidden observable or controllable fact about an entity.
// A state belongs to exactly one entity; an entity may have none.
type EntityState struct {
	ID         int64           `db:"id" json:"id"`
	EntityID   int64           `db:"entity_id" json:"entity_id"`
	StateType  EntityStateType `db:"state_type" json:"state_type"`
	Name       string          `db:"name" json:"name"`
	ValueRange ValueRange      `db:"value_range" json:"value_range"`
	Units      string          `db:"units" json:"units"`
}
