// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import "github.com/DataDog/hearth/pkg/model"

// typeRule maps a (domain set, device-class set) observation onto an
// entity type. Rules are tried in order; the first hit wins, so the more
// specific observations sit on top.
type typeRule struct {
	domains []string
	classes []string
	result  model.EntityType
}

var typeRules = []typeRule{
	{domains: []string{"camera"}, result: model.EntityTypeCamera},
	{domains: []string{"climate"}, result: model.EntityTypeThermostat},
	{domains: []string{"lock"}, result: model.EntityTypeDoorLock},
	{domains: []string{"media_player"}, result: model.EntityTypeSpeaker},
	{domains: []string{"cover"}, result: model.EntityTypeControl},
	{domains: []string{"light"}, result: model.EntityTypeLight},
	{classes: []string{"motion"}, result: model.EntityTypeMotionSensor},
	{classes: []string{"presence", "occupancy"}, result: model.EntityTypePresenceSensor},
	{classes: []string{"door", "window", "opening", "garage_door"}, result: model.EntityTypeOpenCloseSensor},
	{classes: []string{"illuminance"}, result: model.EntityTypeLightSensor},
	{classes: []string{"power", "energy"}, result: model.EntityTypeElectricMeter},
	{classes: []string{"temperature", "humidity", "pressure"}, result: model.EntityTypeClimate},
	{domains: []string{"device_tracker"}, result: model.EntityTypePresenceSensor},
	{domains: []string{"sun"}, result: model.EntityTypeTimeSource},
	{domains: []string{"switch"}, result: model.EntityTypeOnOffSwitch},
	{domains: []string{"sensor", "binary_sensor"}, result: model.EntityTypeOther},
}

// deriveEntityType picks the entity type for a device from everything
// its states expose.
func deriveEntityType(d *Device) model.EntityType {
	domains := map[string]struct{}{}
	classes := map[string]struct{}{}
	for _, s := range d.States {
		domains[s.Domain()] = struct{}{}
		if c := s.DeviceClass(); c != "" {
			classes[c] = struct{}{}
		}
	}
	for _, rule := range typeRules {
		for _, dom := range rule.domains {
			if _, ok := domains[dom]; ok {
				return rule.result
			}
		}
		for _, class := range rule.classes {
			if _, ok := classes[class]; ok {
				return rule.result
			}
		}
	}
	return model.EntityTypeOther
}

// deriveStateType maps one remote state onto a local state type, value
// range and units.
func deriveStateType(s RemoteState) (model.EntityStateType, model.ValueRange, string) {
	units := s.stringAttr("unit_of_measurement")

	switch s.Domain() {
	case "light":
		if _, dimmable := s.Attributes["brightness"]; dimmable {
			return model.StateTypeLightDimmer, model.OnOffRange, ""
		}
		return model.StateTypeOnOff, model.OnOffRange, ""
	case "switch", "fan":
		return model.StateTypeOnOff, model.OnOffRange, ""
	case "cover":
		return model.StateTypeOpenClose, model.OpenCloseRange, ""
	case "lock":
		return model.StateTypeDiscrete, model.ValueRange{Values: []string{"locked", "unlocked"}}, ""
	case "camera":
		return model.StateTypeVideoStream, model.ValueRange{}, ""
	case "climate":
		return model.StateTypeTemperature, model.ValueRange{}, units
	case "media_player":
		return model.StateTypeDiscrete, model.ValueRange{}, ""
	case "device_tracker":
		return model.StateTypePresence, model.ValueRange{Values: []string{"home", "not_home"}}, ""
	case "binary_sensor":
		switch s.DeviceClass() {
		case "motion":
			return model.StateTypeMovement, model.OnOffRange, ""
		case "presence", "occupancy":
			return model.StateTypePresence, model.OnOffRange, ""
		case "door", "window", "opening", "garage_door":
			return model.StateTypeOpenClose, model.OnOffRange, ""
		case "connectivity":
			return model.StateTypeConnectivity, model.OnOffRange, ""
		case "battery":
			return model.StateTypeHighLow, model.OnOffRange, ""
		case "moisture":
			return model.StateTypeMoisture, model.OnOffRange, ""
		}
		return model.StateTypeOnOff, model.OnOffRange, ""
	case "sensor":
		switch s.DeviceClass() {
		case "temperature":
			return model.StateTypeTemperature, model.ValueRange{}, units
		case "humidity":
			return model.StateTypeHumidity, model.ValueRange{}, units
		case "pressure", "atmospheric_pressure":
			return model.StateTypeAirPressure, model.ValueRange{}, units
		case "illuminance":
			return model.StateTypeLightLevel, model.ValueRange{}, units
		case "power", "energy":
			return model.StateTypeElectricUsage, model.ValueRange{}, units
		case "wind_speed":
			return model.StateTypeWindSpeed, model.ValueRange{}, units
		case "sound_pressure":
			return model.StateTypeSoundLevel, model.ValueRange{}, units
		case "timestamp":
			return model.StateTypeDatetime, model.ValueRange{}, ""
		case "data_rate", "data_size":
			return model.StateTypeBandwidthUsage, model.ValueRange{}, units
		}
		return model.StateTypeDiscrete, model.ValueRange{}, units
	}
	return model.StateTypeDiscrete, model.ValueRange{}, units
}

// Domains whose states accept write commands and therefore get a
// controller row alongside the sensor.
var controllableDomains = map[string]struct{}{
	"light":        {},
	"switch":       {},
	"cover":        {},
	"lock":         {},
	"climate":      {},
	"fan":          {},
	"media_player": {},
}

func isControllable(s RemoteState) bool {
	_, ok := controllableDomains[s.Domain()]
	return ok
}

// Binary-sensor device classes that get event-definition hooks when the
// integration's "add alarm events" flag is on.
var alarmEventClasses = map[string]string{
	"motion":       "motion_detected",
	"connectivity": "connectivity_lost",
	"door":         "opened",
	"window":       "opened",
	"opening":      "opened",
	"garage_door":  "opened",
	"battery":      "battery_low",
}

func alarmEventFor(s RemoteState) (eventType string, ok bool) {
	if s.Domain() != "binary_sensor" {
		return "", false
	}
	eventType, ok = alarmEventClasses[s.DeviceClass()]
	return eventType, ok
}
