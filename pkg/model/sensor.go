// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

// Sensor reports values for exactly one EntityState. It carries its own
// integration key so the bus can address it without joining through the state.
type Sensor struct {
	ID              int64  `db:"id" json:"id"`
	EntityStateID   int64  `db:"entity_state_id" json:"entity_state_id"`
	Name            string `db:"name" json:"name"`
	IntegrationID   string `db:"integration_id" json:"integration_id"`
	IntegrationName string `db:"integration_name" json:"integration_name"`
}

// Key returns the sensor's integration cross-reference.
func (s Sensor) Key() IntegrationKey {
	return IntegrationKey{IntegrationID: s.IntegrationID, IntegrationName: s.IntegrationName}
}

// Controller writes values to exactly one EntityState. Payload is an opaque
// descriptor the dispatcher uses to choose the right remote service.
type Controller struct {
	ID              int64          `db:"id" json:"id"`
	EntityStateID   int64          `db:"entity_state_id" json:"entity_state_id"`
	Name            string         `db:"name" json:"name"`
	IntegrationID   string         `db:"integration_id" json:"integration_id"`
	IntegrationName string         `db:"integration_name" json:"integration_name"`
	Payload         map[string]any `db:"-" json:"payload,omitempty"`
}

// Key returns the controller's integration cross-reference.
func (c Controller) Key() IntegrationKey {
	return IntegrationKey{IntegrationID: c.IntegrationID, IntegrationName: c.IntegrationName}
}
