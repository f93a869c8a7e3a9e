// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"strings"

	"github.com/DataDog/hearth/pkg/util/log"
)

// Domains the sync engine never turns into entities: remote-side
// automation plumbing rather than devices.
var ignoredDomains = map[string]struct{}{
	"automation":   {},
	"calendar":     {},
	"conversation": {},
	"person":       {},
	"script":       {},
	"todo":         {},
	"tts":          {},
	"zone":         {},
}

// Suffixes stripped from an object id to find the device it belongs to.
// sensor.kitchen_temperature and binary_sensor.kitchen_motion both fold
// into "kitchen".
var strippableSuffixes = []string{
	"_battery",
	"_humidity",
	"_motion",
	"_temperature",
	"_state",
	"_status",
	"_light",
	"_events_last_hour",
	// sun.sun companion sensors
	"_next_dawn",
	"_next_dusk",
	"_next_midnight",
	"_next_noon",
	"_next_rising",
	"_next_setting",
}

// Device is a group of remote states the engine treats as one entity.
type Device struct {
	// ShortName identifies the device inside the integration and becomes
	// the entity's integration name.
	ShortName string
	// GroupID is the stable device-group id when the remote exposes one
	// (an Insteon address), "" otherwise.
	GroupID string
	States  []RemoteState
}

// DisplayName picks the entity name: the friendly name of the first
// state whose object id equals the short name, else the first state's.
func (d *Device) DisplayName() string {
	for _, s := range d.States {
		if s.ObjectID() == d.ShortName {
			return s.FriendlyName()
		}
	}
	if len(d.States) > 0 {
		return d.States[0].FriendlyName()
	}
	return d.ShortName
}

// shortName strips the first matching suffix off an object id.
func shortName(objectID string) string {
	for _, suffix := range strippableSuffixes {
		if trimmed := strings.TrimSuffix(objectID, suffix); trimmed != objectID && trimmed != "" {
			return trimmed
		}
	}
	return objectID
}

// GroupStates folds the remote's flat state list into devices: first by
// stable device-group id, then by suffix-stripped short name. Ignored
// domains drop out entirely. Order follows first appearance.
func GroupStates(states []RemoteState) []*Device {
	byKey := map[string]*Device{}
	var order []*Device

	for _, s := range states {
		if _, skip := ignoredDomains[s.Domain()]; skip {
			continue
		}

		var key string
		groupID := s.InsteonAddress()
		if groupID != "" {
			key = "addr:" + groupID
		} else {
			key = "name:" + shortName(s.ObjectID())
		}

		dev, ok := byKey[key]
		if !ok {
			dev = &Device{ShortName: shortName(s.ObjectID()), GroupID: groupID}
			byKey[key] = dev
			order = append(order, dev)
		}
		dev.States = append(dev.States, s)
	}

	for _, dev := range order {
		dev.States = elideDuplicates(dev.States)
	}
	return order
}

// elideDuplicates drops a light.<name> state when a switch.<name> state
// with the same short name is present. Insteon dual-reporting exposes
// both; the switch carries the truth.
func elideDuplicates(states []RemoteState) []RemoteState {
	switches := map[string]RemoteState{}
	for _, s := range states {
		if s.Domain() == "switch" {
			switches[shortName(s.ObjectID())] = s
		}
	}
	if len(switches) == 0 {
		return states
	}

	kept := states[:0]
	for _, s := range states {
		if s.Domain() == "light" {
			if sw, dup := switches[shortName(s.ObjectID())]; dup {
				if sw.FriendlyName() != s.FriendlyName() {
					log.Infof("eliding light %s duplicated by switch %s (names differ: %q vs %q)",
						s.EntityID, sw.EntityID, s.FriendlyName(), sw.FriendlyName())
				}
				continue
			}
		}
		kept = append(kept, s)
	}
	return kept
}
