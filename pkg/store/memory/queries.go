// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package memory

import (
	"sort"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
)

func (t *tables) getEntity(id int64) (*model.Entity, error) {
	e, ok := t.entities[id]
	if !ok {
		return nil, errors.NewNotFoundf("entity %d", id)
	}
	cp := e
	return &cp, nil
}

func (t *tables) getEntityByKey(key model.IntegrationKey) (*model.Entity, error) {
	for _, e := range t.entities {
		if e.IntegrationID == key.IntegrationID && e.IntegrationName == key.IntegrationName {
			cp := e
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundf("entity with key %s", key)
}

func (t *tables) listEntitiesForIntegration(integrationID string) []*model.Entity {
	var out []*model.Entity
	for _, e := range t.entities {
		if e.IntegrationID == integrationID {
			cp := e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) getEntityState(id int64) (*model.EntityState, error) {
	s, ok := t.states[id]
	if !ok {
		return nil, errors.NewNotFoundf("entity state %d", id)
	}
	cp := s
	return &cp, nil
}

func (t *tables) listStatesForEntity(entityID int64) []*model.EntityState {
	var out []*model.EntityState
	for _, s := range t.states {
		if s.EntityID == entityID {
			cp := s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) listSensors() []model.Sensor {
	out := make([]model.Sensor, 0, len(t.sensors))
	for _, s := range t.sensors {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) listSensorsForState(stateID int64) []model.Sensor {
	var out []model.Sensor
	for _, s := range t.sensors {
		if s.EntityStateID == stateID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) getControllerByKey(key model.IntegrationKey) (*model.Controller, error) {
	for _, c := range t.controllers {
		if c.IntegrationID == key.IntegrationID && c.IntegrationName == key.IntegrationName {
			cp := c
			cp.Payload = copyPayload(c.Payload)
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundf("controller with key %s", key)
}

func (t *tables) listControllersForState(stateID int64) []model.Controller {
	var out []model.Controller
	for _, c := range t.controllers {
		if c.EntityStateID == stateID {
			cp := c
			cp.Payload = copyPayload(c.Payload)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) listAttributesForEntity(entityID int64) []model.EntityAttribute {
	latest := map[string]model.EntityAttribute{}
	for _, a := range t.attributes {
		if a.EntityID != entityID {
			continue
		}
		if cur, ok := latest[a.Name]; !ok || a.ID > cur.ID {
			latest[a.Name] = a
		}
	}
	out := make([]model.EntityAttribute, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *tables) listDelegationsForState(stateID int64) []model.EntityStateDelegation {
	var out []model.EntityStateDelegation
	for _, d := range t.delegations {
		if d.EntityStateID == stateID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) listDelegationsForDelegate(delegateEntityID int64) []model.EntityStateDelegation {
	var out []model.EntityStateDelegation
	for _, d := range t.delegations {
		if d.DelegateEntityID == delegateEntityID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) entityHasUserRelationships(entityID int64) bool {
	for k := range t.positions {
		if k.a == entityID {
			return true
		}
	}
	for k := range t.paths {
		if k.a == entityID {
			return true
		}
	}
	for k := range t.views {
		if k.a == entityID {
			return true
		}
	}
	for k := range t.collectionMembers {
		if k.b == entityID {
			return true
		}
	}
	for _, d := range t.delegations {
		if d.DelegateEntityID == entityID {
			return true
		}
		if s, ok := t.states[d.EntityStateID]; ok && s.EntityID == entityID {
			return true
		}
	}
	return false
}

func (t *tables) listViewsForEntity(entityID int64) []model.EntityView {
	var out []model.EntityView
	for k := range t.views {
		if k.a == entityID {
			out = append(out, model.EntityView{EntityID: k.a, ViewID: k.b})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewID < out[j].ViewID })
	return out
}

func (t *tables) getIntegrationRecord(integrationID string) (*model.IntegrationRecord, error) {
	r, ok := t.integrations[integrationID]
	if !ok {
		return nil, errors.NewNotFoundf("integration record %s", integrationID)
	}
	cp := r
	return &cp, nil
}

func (t *tables) listIntegrationAttributes(integrationID string) []model.IntegrationAttribute {
	attrs := t.integrationAttrs[integrationID]
	out := make([]model.IntegrationAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
