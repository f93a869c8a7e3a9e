// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"strings"
	"time"
)

// RemoteState is one entry of Home Assistant's flat state list.
type RemoteState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
}

// Domain returns the part before the first dot, e.g. "light".
func (s RemoteState) Domain() string {
	if i := strings.Index(s.EntityID, "."); i >= 0 {
		return s.EntityID[:i]
	}
	return s.EntityID
}

// ObjectID returns the part after the first dot, e.g. "kitchen".
func (s RemoteState) ObjectID() string {
	if i := strings.Index(s.EntityID, "."); i >= 0 {
		return s.EntityID[i+1:]
	}
	return ""
}

func (s RemoteState) stringAttr(name string) string {
	if v, ok := s.Attributes[name].(string); ok {
		return v
	}
	return ""
}

// FriendlyName returns the display name, falling back to the object id.
func (s RemoteState) FriendlyName() string {
	if name := s.stringAttr("friendly_name"); name != "" {
		return name
	}
	return s.ObjectID()
}

// DeviceClass returns the declared device class, "" when absent.
func (s RemoteState) DeviceClass() string {
	return s.stringAttr("device_class")
}

// InsteonAddress returns the stable Insteon device address when the
// remote exposes one. States sharing an address are one device.
func (s RemoteState) InsteonAddress() string {
	if addr := s.stringAttr("insteon_address"); addr != "" {
		return addr
	}
	return s.stringAttr("address")
}
