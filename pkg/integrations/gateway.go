// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package integrations defines the gateway contract every external system
// plugs in through, the shared configuration manager, and the registry
// the API and process root talk to.
package integrations

import (
	"context"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/monitor"
)

// IntegrationHealth is the coarse per-integration health exposed on the
// API, derived on every configuration reload.
type IntegrationHealth string

// Integration health values, most severe configuration problems first.
const (
	HealthDisabled        IntegrationHealth = "DISABLED"
	HealthConfigError     IntegrationHealth = "CONFIG_ERROR"
	HealthConnectionError IntegrationHealth = "CONNECTION_ERROR"
	HealthTemporaryError  IntegrationHealth = "TEMPORARY_ERROR"
	HealthHealthy         IntegrationHealth = "HEALTHY"
)

// AttributeSpec declares one configuration attribute an integration
// understands. Secret attributes are masked on the read surface.
type AttributeSpec struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	IsRequired bool   `json:"is_required"`
	IsSecret   bool   `json:"is_secret"`
	Default    string `json:"default,omitempty"`
}

// Metadata describes an integration to the registry and the API.
type Metadata struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Attributes []AttributeSpec `json:"attributes"`
}

// Spec returns the declaration for the named attribute.
func (m Metadata) Spec(name string) (AttributeSpec, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}

// ApplyDefaults fills declared defaults into a copy of attrs for every
// attribute the caller left unset.
func (m Metadata) ApplyDefaults(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	for _, a := range m.Attributes {
		if a.Default != "" {
			if _, ok := out[a.Name]; !ok {
				out[a.Name] = a.Default
			}
		}
	}
	return out
}

// Validate checks that every required attribute is present and non-empty.
func (m Metadata) Validate(attrs map[string]string) ValidationResult {
	var res ValidationResult
	for _, a := range m.Attributes {
		if a.IsRequired && attrs[a.Name] == "" {
			res.Errors = append(res.Errors, "missing required attribute "+a.Name)
		}
	}
	return res
}

// ControlResult reports the outcome of one control dispatch.
type ControlResult struct {
	NewValue string   `json:"new_value,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Controller dispatches a write command to the remote system backing a
// controller row.
type Controller interface {
	Control(ctx context.Context, key model.IntegrationKey, payload map[string]any, value string) (*ControlResult, error)
}

// Lifecycle is the configuration surface every gateway carries, usually
// by embedding *Manager.
type Lifecycle interface {
	Enabled() bool
	Enable(ctx context.Context, attrs map[string]string) error
	Disable(ctx context.Context) error
	UpdateSettings(ctx context.Context, attrs map[string]string) error
	HealthStatus() IntegrationHealth
	// NotifySettingsChanged fires the gateway's reload listeners so
	// derived caches rebuild.
	NotifySettingsChanged()
}

// Gateway is one pluggable external system. Implementations embed
// *Manager for the Lifecycle surface and add their own sync, monitor and
// control behavior.
type Gateway interface {
	Lifecycle

	Metadata() Metadata
	// Monitors returns the gateway's background pollers, empty when the
	// integration has none or polls nothing while disabled.
	Monitors() []monitor.Monitor
	// Controller returns the dispatch surface, nil for read-only systems.
	Controller() Controller
	ValidateConfiguration(attrs map[string]string) ValidationResult
	// Sync reconciles local rows against the remote model. Gateways
	// without a remote entity model return an empty result.
	Sync(ctx context.Context) (*ProcessingResult, error)
}
