// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package model defines the persistent domain objects of the hub: entities,
// their hidden states, sensors, controllers and the edges between them.
package model

import (
	"strings"
	"time"
)

// EntityType drives an entity's default visuals and grouping behavior.
type EntityType string

// The closed set of entity types.
const (
	EntityTypeArea            EntityType = "area"
	EntityTypeAppliance       EntityType = "appliance"
	EntityTypeCamera          EntityType = "camera"
	EntityTypeClimate         EntityType = "climate"
	EntityTypeComputer        EntityType = "computer"
	EntityTypeControl         EntityType = "control"
	EntityTypeDoorLock        EntityType = "door_lock"
	EntityTypeElectricMeter   EntityType = "electric_meter"
	EntityTypeHealthcheck     EntityType = "healthcheck"
	EntityTypeHumidifier      EntityType = "humidifier"
	EntityTypeLight           EntityType = "light"
	EntityTypeLightSensor     EntityType = "light_sensor"
	EntityTypeMotionSensor    EntityType = "motion_sensor"
	EntityTypeOnOffSwitch     EntityType = "on_off_switch"
	EntityTypeOpenCloseSensor EntityType = "open_close_sensor"
	EntityTypeOther           EntityType = "other"
	EntityTypePresenceSensor  EntityType = "presence_sensor"
	EntityTypeService         EntityType = "service"
	EntityTypeSpeaker         EntityType = "speaker"
	EntityTypeThermostat      EntityType = "thermostat"
	EntityTypeTimeSource      EntityType = "time_source"
	EntityTypeWallSwitch      EntityType = "wall_switch"
	EntityTypeWeatherStation  EntityType = "weather_station"
)

// EntityTypes lists every valid entity type.
var EntityTypes = []EntityType{
	EntityTypeArea, EntityTypeAppliance, EntityTypeCamera, EntityTypeClimate,
	EntityTypeComputer, EntityTypeControl, EntityTypeDoorLock,
	EntityTypeElectricMeter, EntityTypeHealthcheck, EntityTypeHumidifier,
	EntityTypeLight, EntityTypeLightSensor, EntityTypeMotionSensor,
	EntityTypeOnOffSwitch, EntityTypeOpenCloseSensor, EntityTypeOther,
	EntityTypePresenceSensor, EntityTypeService, EntityTypeSpeaker,
	EntityTypeThermostat, EntityTypeTimeSource, EntityTypeWallSwitch,
	EntityTypeWeatherStation,
}

// Valid reports whether t is a member of the closed enumeration.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the display form of the type, e.g. "On Off Switch".
func (t EntityType) Label() string {
	return labelize(string(t))
}

func labelize(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Entity is a physical device, software artifact or abstract region.
type Entity struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	EntityType      EntityType `db:"entity_type" json:"entity_type"`
	CanUserDelete   bool       `db:"can_user_delete" json:"can_user_delete"`
	IntegrationID   string     `db:"integration_id" json:"integration_id"`
	IntegrationName string     `db:"integration_name" json:"integration_name"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Key returns the entity's integration cross-reference.
func (e *Entity) Key() IntegrationKey {
	return IntegrationKey{IntegrationID: e.IntegrationID, IntegrationName: e.IntegrationName}
}
