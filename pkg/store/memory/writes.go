// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package memory

import (
	"time"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
)

func (t *tables) entityKeyTaken(key model.IntegrationKey, exceptID int64) bool {
	if key.IsZero() {
		return false
	}
	for _, e := range t.entities {
		if e.ID != exceptID && e.IntegrationID == key.IntegrationID && e.IntegrationName == key.IntegrationName {
			return true
		}
	}
	return false
}

func (t *tables) createEntity(e *model.Entity) error {
	if t.entityKeyTaken(e.Key(), 0) {
		return errors.NewConflictf("entity key %s already exists", e.Key())
	}
	e.ID = t.newID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	t.entities[e.ID] = *e
	return nil
}

func (t *tables) updateEntity(e *model.Entity) error {
	old, ok := t.entities[e.ID]
	if !ok {
		return errors.NewNotFoundf("entity %d", e.ID)
	}
	if t.entityKeyTaken(e.Key(), e.ID) {
		return errors.NewConflictf("entity key %s already exists", e.Key())
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	t.entities[e.ID] = *e
	return nil
}

func (t *tables) deleteEntity(id int64) error {
	if _, ok := t.entities[id]; !ok {
		return errors.NewNotFoundf("entity %d", id)
	}
	for _, s := range t.listStatesForEntity(id) {
		t.deleteEntityState(s.ID) //nolint:errcheck
	}
	kept := t.attributes[:0]
	for _, a := range t.attributes {
		if a.EntityID != id {
			kept = append(kept, a)
		}
	}
	t.attributes = kept
	for k := range t.positions {
		if k.a == id {
			delete(t.positions, k)
		}
	}
	for k := range t.paths {
		if k.a == id {
			delete(t.paths, k)
		}
	}
	for k := range t.views {
		if k.a == id {
			delete(t.views, k)
		}
	}
	for k := range t.collectionMembers {
		if k.b == id {
			delete(t.collectionMembers, k)
		}
	}
	// delegation edges are weak: deleting either side drops the edge
	for did, d := range t.delegations {
		if d.DelegateEntityID == id {
			delete(t.delegations, did)
		}
	}
	delete(t.entities, id)
	return nil
}

func (t *tables) createEntityState(s *model.EntityState) error {
	if _, ok := t.entities[s.EntityID]; !ok {
		return errors.NewStoragef("entity %d does not exist for state %q", s.EntityID, s.Name)
	}
	s.ID = t.newID()
	t.states[s.ID] = *s
	return nil
}

func (t *tables) updateEntityState(s *model.EntityState) error {
	if _, ok := t.states[s.ID]; !ok {
		return errors.NewNotFoundf("entity state %d", s.ID)
	}
	t.states[s.ID] = *s
	return nil
}

func (t *tables) deleteEntityState(id int64) error {
	if _, ok := t.states[id]; !ok {
		return errors.NewNotFoundf("entity state %d", id)
	}
	for sid, s := range t.sensors {
		if s.EntityStateID == id {
			delete(t.sensors, sid)
		}
	}
	for cid, c := range t.controllers {
		if c.EntityStateID == id {
			delete(t.controllers, cid)
		}
	}
	for eid, e := range t.events {
		if e.EntityStateID == id {
			delete(t.events, eid)
		}
	}
	for did, d := range t.delegations {
		if d.EntityStateID == id {
			delete(t.delegations, did)
		}
	}
	delete(t.states, id)
	return nil
}

func (t *tables) sensorKeyTaken(key model.IntegrationKey, exceptID int64) bool {
	if key.IsZero() {
		return false
	}
	for _, s := range t.sensors {
		if s.ID != exceptID && s.IntegrationID == key.IntegrationID && s.IntegrationName == key.IntegrationName {
			return true
		}
	}
	return false
}

func (t *tables) createSensor(s *model.Sensor) error {
	if _, ok := t.states[s.EntityStateID]; !ok {
		return errors.NewStoragef("entity state %d does not exist for sensor %q", s.EntityStateID, s.Name)
	}
	if t.sensorKeyTaken(s.Key(), 0) {
		return errors.NewConflictf("sensor key %s already exists", s.Key())
	}
	s.ID = t.newID()
	t.sensors[s.ID] = *s
	return nil
}

func (t *tables) deleteSensor(id int64) error {
	if _, ok := t.sensors[id]; !ok {
		return errors.NewNotFoundf("sensor %d", id)
	}
	delete(t.sensors, id)
	return nil
}

func (t *tables) createController(c *model.Controller) error {
	if _, ok := t.states[c.EntityStateID]; !ok {
		return errors.NewStoragef("entity state %d does not exist for controller %q", c.EntityStateID, c.Name)
	}
	for _, other := range t.controllers {
		if !c.Key().IsZero() && other.Key() == c.Key() {
			return errors.NewConflictf("controller key %s already exists", c.Key())
		}
	}
	c.ID = t.newID()
	stored := *c
	stored.Payload = copyPayload(c.Payload)
	t.controllers[c.ID] = stored
	return nil
}

func (t *tables) deleteController(id int64) error {
	if _, ok := t.controllers[id]; !ok {
		return errors.NewNotFoundf("controller %d", id)
	}
	delete(t.controllers, id)
	return nil
}

func (t *tables) setEntityAttribute(entityID int64, name, value string, attrType model.AttributeType, editable bool) error {
	if _, ok := t.entities[entityID]; !ok {
		return errors.NewNotFoundf("entity %d", entityID)
	}
	t.attributes = append(t.attributes, model.EntityAttribute{
		ID:            t.newID(),
		EntityID:      entityID,
		Name:          name,
		Value:         value,
		AttributeType: attrType,
		IsEditable:    editable,
		CreatedAt:     time.Now().UTC(),
	})
	return nil
}

func (t *tables) deleteEntityAttribute(entityID int64, name string) error {
	kept := t.attributes[:0]
	for _, a := range t.attributes {
		if a.EntityID == entityID && a.Name == name {
			continue
		}
		kept = append(kept, a)
	}
	t.attributes = kept
	return nil
}

func (t *tables) createDelegation(d *model.EntityStateDelegation) error {
	if _, ok := t.states[d.EntityStateID]; !ok {
		return errors.NewStoragef("entity state %d does not exist", d.EntityStateID)
	}
	if _, ok := t.entities[d.DelegateEntityID]; !ok {
		return errors.NewStoragef("delegate entity %d does not exist", d.DelegateEntityID)
	}
	for _, other := range t.delegations {
		if other.EntityStateID == d.EntityStateID && other.DelegateEntityID == d.DelegateEntityID {
			return errors.NewConflictf("delegation (%d, %d) already exists", d.EntityStateID, d.DelegateEntityID)
		}
	}
	d.ID = t.newID()
	t.delegations[d.ID] = *d
	return nil
}

func (t *tables) deleteDelegation(id int64) error {
	if _, ok := t.delegations[id]; !ok {
		return errors.NewNotFoundf("delegation %d", id)
	}
	delete(t.delegations, id)
	return nil
}

func (t *tables) addEntityToView(entityID, viewID int64) error {
	if _, ok := t.entities[entityID]; !ok {
		return errors.NewNotFoundf("entity %d", entityID)
	}
	t.views[pairKey{entityID, viewID}] = struct{}{}
	return nil
}

func (t *tables) removeEntityFromView(entityID, viewID int64) error {
	delete(t.views, pairKey{entityID, viewID})
	return nil
}

func (t *tables) setEntityPosition(p *model.EntityPosition) error {
	if _, ok := t.entities[p.EntityID]; !ok {
		return errors.NewNotFoundf("entity %d", p.EntityID)
	}
	t.positions[pairKey{p.EntityID, p.LocationID}] = *p
	return nil
}

func (t *tables) setEntityPath(p *model.EntityPath) error {
	if _, ok := t.entities[p.EntityID]; !ok {
		return errors.NewNotFoundf("entity %d", p.EntityID)
	}
	t.paths[pairKey{p.EntityID, p.LocationID}] = *p
	return nil
}

func (t *tables) addEntityToCollection(collectionID, entityID int64) error {
	if _, ok := t.entities[entityID]; !ok {
		return errors.NewNotFoundf("entity %d", entityID)
	}
	t.collectionMembers[pairKey{collectionID, entityID}] = struct{}{}
	return nil
}

func (t *tables) upsertEventDefinition(d *model.EventDefinition) error {
	if _, ok := t.states[d.EntityStateID]; !ok {
		return errors.NewStoragef("entity state %d does not exist", d.EntityStateID)
	}
	for id, existing := range t.events {
		if existing.EntityStateID == d.EntityStateID && existing.EventType == d.EventType {
			existing.Label = d.Label
			t.events[id] = existing
			d.ID = id
			return nil
		}
	}
	d.ID = t.newID()
	t.events[d.ID] = *d
	return nil
}

func (t *tables) setIntegrationEnabled(integrationID string, enabled bool) error {
	t.integrations[integrationID] = model.IntegrationRecord{IntegrationID: integrationID, Enabled: enabled}
	return nil
}

func (t *tables) putIntegrationAttribute(attr model.IntegrationAttribute) error {
	attrs, ok := t.integrationAttrs[attr.IntegrationID]
	if !ok {
		attrs = map[string]model.IntegrationAttribute{}
		t.integrationAttrs[attr.IntegrationID] = attrs
	}
	attrs[attr.Name] = attr
	return nil
}
