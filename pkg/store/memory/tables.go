// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package memory implements the store on in-process maps. It backs tests
// and the "memory" database backend for single-node setups.
package memory

import (
	"github.com/DataDog/hearth/pkg/model"
)

type pairKey struct {
	a, b int64
}

// tables holds every row of the memory backend. A transaction snapshots the
// whole struct so rollback is a pointer swap.
type tables struct {
	nextID int64

	entities    map[int64]model.Entity
	states      map[int64]model.EntityState
	sensors     map[int64]model.Sensor
	controllers map[int64]model.Controller
	// attributes are append-only; the current value for a name is the row
	// with the highest id.
	attributes  []model.EntityAttribute
	delegations map[int64]model.EntityStateDelegation

	positions         map[pairKey]model.EntityPosition
	paths             map[pairKey]model.EntityPath
	views             map[pairKey]struct{}
	collectionMembers map[pairKey]struct{}

	events map[int64]model.EventDefinition

	integrations     map[string]model.IntegrationRecord
	integrationAttrs map[string]map[string]model.IntegrationAttribute
}

func newTables() *tables {
	return &tables{
		entities:          map[int64]model.Entity{},
		states:            map[int64]model.EntityState{},
		sensors:           map[int64]model.Sensor{},
		controllers:       map[int64]model.Controller{},
		delegations:       map[int64]model.EntityStateDelegation{},
		positions:         map[pairKey]model.EntityPosition{},
		paths:             map[pairKey]model.EntityPath{},
		views:             map[pairKey]struct{}{},
		collectionMembers: map[pairKey]struct{}{},
		events:            map[int64]model.EventDefinition{},
		integrations:      map[string]model.IntegrationRecord{},
		integrationAttrs:  map[string]map[string]model.IntegrationAttribute{},
	}
}

func (t *tables) newID() int64 {
	t.nextID++
	return t.nextID
}

func copyPayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	c := newTables()
	c.nextID = t.nextID
	for k, v := range t.entities {
		c.entities[k] = v
	}
	for k, v := range t.states {
		c.states[k] = v
	}
	for k, v := range t.sensors {
		c.sensors[k] = v
	}
	for k, v := range t.controllers {
		v.Payload = copyPayload(v.Payload)
		c.controllers[k] = v
	}
	c.attributes = append([]model.EntityAttribute(nil), t.attributes...)
	for k, v := range t.delegations {
		c.delegations[k] = v
	}
	for k, v := range t.positions {
		c.positions[k] = v
	}
	for k, v := range t.paths {
		c.paths[k] = v
	}
	for k := range t.views {
		c.views[k] = struct{}{}
	}
	for k := range t.collectionMembers {
		c.collectionMembers[k] = struct{}{}
	}
	for k, v := range t.events {
		c.events[k] = v
	}
	for k, v := range t.integrations {
		c.integrations[k] = v
	}
	for id, attrs := range t.integrationAttrs {
		m := make(map[string]model.IntegrationAttribute, len(attrs))
		for k, v := range attrs {
			m[k] = v
		}
		c.integrationAttrs[id] = m
	}
	return c
}
