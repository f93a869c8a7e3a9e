// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/util/log"
)

// serviceCaller is the slice of Client the dispatcher needs.
type serviceCaller interface {
	CallService(ctx context.Context, domain, service, entityID string, data map[string]any) error
}

// ControllerDispatch routes control commands to Home Assistant services
// and installs the optimistic bus override on success.
type ControllerDispatch struct {
	store  store.Store
	bus    *sensorbus.Bus
	caller func() (serviceCaller, error)
}

// NewControllerDispatch builds a dispatcher. caller resolves the current
// client on every command, so settings reloads take effect immediately.
func NewControllerDispatch(st store.Store, bus *sensorbus.Bus, caller func() (serviceCaller, error)) *ControllerDispatch {
	return &ControllerDispatch{store: st, bus: bus, caller: caller}
}

// command is the translated form of a control value.
type command struct {
	word    string  // canonical word command, "" for numeric
	number  float64 // numeric command when word == ""
	numeric bool
}

// translateValue normalizes the caller's control value: recognized words
// map to their canonical form, anything parseable is numeric.
func translateValue(value string) (command, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "on", "true", "yes":
		return command{word: "on"}, nil
	case "off", "false", "no":
		return command{word: "off"}, nil
	case "open", "opened", "up":
		return command{word: "open"}, nil
	case "close", "closed", "down":
		return command{word: "close"}, nil
	case "lock", "locked":
		return command{word: "lock"}, nil
	case "unlock", "unlocked":
		return command{word: "unlock"}, nil
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return command{number: n, numeric: true}, nil
	}
	return command{}, fmt.Errorf("unknown control value %q", value)
}

// canonical is the value written back to the caller and into the bus
// override.
func (c command) canonical() string {
	if c.numeric {
		return strconv.FormatFloat(c.number, 'f', -1, 64)
	}
	switch c.word {
	case "close":
		return "closed"
	case "lock":
		return "locked"
	case "unlock":
		return "unlocked"
	}
	return c.word
}

// serviceCall is one resolved remote invocation.
type serviceCall struct {
	service string
	data    map[string]any
}

// Control implements integrations.Controller.
func (d *ControllerDispatch) Control(ctx context.Context, key model.IntegrationKey, payload map[string]any, value string) (*integrations.ControlResult, error) {
	controller, err := d.store.GetControllerByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = controller.Payload
	}

	res := &integrations.ControlResult{}
	cmd, err := translateValue(value)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	remoteID := key.IntegrationName
	domain := remoteID
	if i := strings.Index(remoteID, "."); i >= 0 {
		domain = remoteID[:i]
	}

	call, err := resolveService(domain, payload, cmd)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	caller, err := d.caller()
	if err != nil {
		return nil, err
	}
	if err := caller.CallService(ctx, domain, call.service, remoteID, call.data); err != nil {
		log.Warnf("control %s: %s.%s failed: %v", key, domain, call.service, err)
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	res.NewValue = cmd.canonical()
	d.bus.Override(controller.EntityStateID, res.NewValue)
	return res, nil
}

// resolveService picks the remote service for a command, preferring the
// controller payload's declarations over the per-domain fallback table.
func resolveService(domain string, payload map[string]any, cmd command) (serviceCall, error) {
	if controllable, _ := payload["is_controllable"].(bool); controllable {
		return resolveFromPayload(payload, cmd)
	}
	return resolveFromDomain(domain, cmd)
}

func payloadService(payload map[string]any, name string) (string, bool) {
	svc, ok := payload[name].(string)
	return svc, ok && svc != ""
}

func resolveFromPayload(payload map[string]any, cmd command) (serviceCall, error) {
	if !cmd.numeric {
		var key string
		switch cmd.word {
		case "on", "lock":
			key = "on_service"
		case "off", "unlock":
			key = "off_service"
		case "open":
			key = "open_service"
		case "close":
			key = "close_service"
		}
		if svc, ok := payloadService(payload, key); ok {
			return serviceCall{service: svc}, nil
		}
		return serviceCall{}, fmt.Errorf("payload declares no service for %q", cmd.word)
	}

	setService, hasSet := payloadService(payload, "set_service")
	if payload["supports_brightness"] == true {
		// Brightness rides the on service when no setter is declared.
		svc := setService
		if !hasSet {
			var ok bool
			if svc, ok = payloadService(payload, "on_service"); !ok {
				return serviceCall{}, fmt.Errorf("payload declares no service for brightness")
			}
		}
		if cmd.number < 0 || cmd.number > 100 {
			return serviceCall{}, fmt.Errorf("brightness %v out of range 0-100", cmd.number)
		}
		return serviceCall{service: svc, data: map[string]any{"brightness_pct": cmd.number}}, nil
	}
	if !hasSet {
		return serviceCall{}, fmt.Errorf("payload declares no set_service for numeric value")
	}
	switch {
	case hasKey(payload, "temperature"):
		return serviceCall{service: setService, data: map[string]any{"temperature": cmd.number}}, nil
	case hasKey(payload, "volume_level"):
		if cmd.number < 0 || cmd.number > 1 {
			return serviceCall{}, fmt.Errorf("volume %v out of range 0.0-1.0", cmd.number)
		}
		return serviceCall{service: setService, data: map[string]any{"volume_level": cmd.number}}, nil
	case hasKey(payload, "position"):
		if cmd.number < 0 || cmd.number > 100 {
			return serviceCall{}, fmt.Errorf("position %v out of range 0-100", cmd.number)
		}
		return serviceCall{service: setService, data: map[string]any{"position": cmd.number}}, nil
	}
	return serviceCall{}, fmt.Errorf("payload accepts no numeric value")
}

func hasKey(payload map[string]any, name string) bool {
	_, ok := payload[name]
	return ok
}

// resolveFromDomain is the best-effort table used when no payload
// declares the device controllable.
func resolveFromDomain(domain string, cmd command) (serviceCall, error) {
	if cmd.numeric {
		switch domain {
		case "light":
			if cmd.number < 0 || cmd.number > 100 {
				return serviceCall{}, fmt.Errorf("brightness %v out of range 0-100", cmd.number)
			}
			return serviceCall{service: "turn_on", data: map[string]any{"brightness_pct": cmd.number}}, nil
		case "climate":
			return serviceCall{service: "set_temperature", data: map[string]any{"temperature": cmd.number}}, nil
		case "media_player":
			if cmd.number < 0 || cmd.number > 1 {
				return serviceCall{}, fmt.Errorf("volume %v out of range 0.0-1.0", cmd.number)
			}
			return serviceCall{service: "volume_set", data: map[string]any{"volume_level": cmd.number}}, nil
		case "cover":
			if cmd.number < 0 || cmd.number > 100 {
				return serviceCall{}, fmt.Errorf("position %v out of range 0-100", cmd.number)
			}
			return serviceCall{service: "set_cover_position", data: map[string]any{"position": cmd.number}}, nil
		}
		return serviceCall{}, fmt.Errorf("domain %s accepts no numeric value", domain)
	}

	switch cmd.word {
	case "open":
		if domain == "cover" {
			return serviceCall{service: "open_cover"}, nil
		}
	case "close":
		if domain == "cover" {
			return serviceCall{service: "close_cover"}, nil
		}
	case "lock":
		if domain == "lock" {
			return serviceCall{service: "lock"}, nil
		}
	case "unlock":
		if domain == "lock" {
			return serviceCall{service: "unlock"}, nil
		}
	case "on":
		return serviceCall{service: "turn_on"}, nil
	case "off":
		return serviceCall{service: "turn_off"}, nil
	}
	return serviceCall{}, fmt.Errorf("domain %s does not support %q", domain, cmd.word)
}
