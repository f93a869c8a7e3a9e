// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package postgres

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
)

// pgTx implements store.Tx on a sqlx transaction. dirty marks entity-model
// mutations so the post-commit broadcast fires.
type pgTx struct {
	q     *sqlx.Tx
	dirty bool
}

var _ store.Tx = (*pgTx)(nil)

func (tx *pgTx) touch(err error) error {
	if err == nil {
		tx.dirty = true
	}
	return err
}

// Reads inside the transaction.

func (tx *pgTx) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	return getEntity(ctx, tx.q, id)
}

func (tx *pgTx) GetEntityByKey(ctx context.Context, key model.IntegrationKey) (*model.Entity, error) {
	return getEntityByKey(ctx, tx.q, key)
}

func (tx *pgTx) ListEntitiesForIntegration(ctx context.Context, integrationID string) ([]*model.Entity, error) {
	return listEntitiesForIntegration(ctx, tx.q, integrationID)
}

func (tx *pgTx) GetEntityState(ctx context.Context, id int64) (*model.EntityState, error) {
	return getEntityState(ctx, tx.q, id)
}

func (tx *pgTx) ListStatesForEntity(ctx context.Context, entityID int64) ([]*model.EntityState, error) {
	return listStatesForEntity(ctx, tx.q, entityID)
}

func (tx *pgTx) ListSensors(ctx context.Context) ([]model.Sensor, error) {
	return listSensors(ctx, tx.q)
}

func (tx *pgTx) ListSensorsForState(ctx context.Context, stateID int64) ([]model.Sensor, error) {
	return listSensorsForState(ctx, tx.q, stateID)
}

func (tx *pgTx) GetControllerByKey(ctx context.Context, key model.IntegrationKey) (*model.Controller, error) {
	return getControllerByKey(ctx, tx.q, key)
}

func (tx *pgTx) ListControllersForState(ctx context.Context, stateID int64) ([]model.Controller, error) {
	return listControllersForState(ctx, tx.q, stateID)
}

func (tx *pgTx) ListAttributesForEntity(ctx context.Context, entityID int64) ([]model.EntityAttribute, error) {
	return listAttributesForEntity(ctx, tx.q, entityID)
}

func (tx *pgTx) ListDelegationsForState(ctx context.Context, stateID int64) ([]model.EntityStateDelegation, error) {
	return listDelegationsForState(ctx, tx.q, stateID)
}

func (tx *pgTx) ListDelegationsForDelegate(ctx context.Context, delegateEntityID int64) ([]model.EntityStateDelegation, error) {
	return listDelegationsForDelegate(ctx, tx.q, delegateEntityID)
}

func (tx *pgTx) EntityHasUserRelationships(ctx context.Context, entityID int64) (bool, error) {
	return entityHasUserRelationships(ctx, tx.q, entityID)
}

func (tx *pgTx) ListViewsForEntity(ctx context.Context, entityID int64) ([]model.EntityView, error) {
	return listViewsForEntity(ctx, tx.q, entityID)
}

func (tx *pgTx) GetIntegrationRecord(ctx context.Context, integrationID string) (*model.IntegrationRecord, error) {
	return getIntegrationRecord(ctx, tx.q, integrationID)
}

func (tx *pgTx) ListIntegrationAttributes(ctx context.Context, integrationID string) ([]model.IntegrationAttribute, error) {
	return listIntegrationAttributes(ctx, tx.q, integrationID)
}

// Writes.

func (tx *pgTx) CreateEntity(ctx context.Context, e *model.Entity) error {
	err := tx.q.QueryRowxContext(ctx, `
		INSERT INTO entities (name, entity_type, can_user_delete, integration_id, integration_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		e.Name, e.EntityType, e.CanUserDelete, e.IntegrationID, e.IntegrationName,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return tx.touch(mapError(err))
}

func (tx *pgTx) UpdateEntity(ctx context.Context, e *model.Entity) error {
	res, err := tx.q.ExecContext(ctx, `
		UPDATE entities
		SET name = $2, entity_type = $3, can_user_delete = $4,
		    integration_id = $5, integration_name = $6, updated_at = now()
		WHERE id = $1`,
		e.ID, e.Name, e.EntityType, e.CanUserDelete, e.IntegrationID, e.IntegrationName)
	return tx.touch(requireRow(res, err, "entity %d", e.ID))
}

func (tx *pgTx) DeleteEntity(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, "DELETE FROM entities WHERE id = $1", id)
	return tx.touch(requireRow(res, err, "entity %d", id))
}

func (tx *pgTx) CreateEntityState(ctx context.Context, s *model.EntityState) error {
	err := tx.q.QueryRowxContext(ctx, `
		INSERT INTO entity_states (entity_id, state_type, name, value_range, units)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.EntityID, s.StateType, s.Name, s.ValueRange, s.Units,
	).Scan(&s.ID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) UpdateEntityState(ctx context.Context, s *model.EntityState) error {
	res, err := tx.q.ExecContext(ctx, `
		UPDATE entity_states
		SET state_type = $2, name = $3, value_range = $4, units = $5
		WHERE id = $1`,
		s.ID, s.StateType, s.Name, s.ValueRange, s.Units)
	return tx.touch(requireRow(res, err, "entity state %d", s.ID))
}

func (tx *pgTx) DeleteEntityState(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, "DELETE FROM entity_states WHERE id = $1", id)
	return tx.touch(requireRow(res, err, "entity state %d", id))
}

func (tx *pgTx) CreateSensor(ctx context.Context, s *model.Sensor) error {
	err := tx.q.QueryRowxContext(ctx, `
		INSERT INTO sensors (entity_state_id, name, integration_id, integration_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.EntityStateID, s.Name, s.IntegrationID, s.IntegrationName,
	).Scan(&s.ID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) DeleteSensor(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, "DELETE FROM sensors WHERE id = $1", id)
	return tx.touch(requireRow(res, err, "sensor %d", id))
}

func (tx *pgTx) CreateController(ctx context.Context, c *model.Controller) error {
	payload, err := json.Marshal(c.Payload)
	if err != nil {
		return mapError(err)
	}
	if c.Payload == nil {
		payload = nil
	}
	err = tx.q.QueryRowxContext(ctx, `
		INSERT INTO controllers (entity_state_id, name, integration_id, integration_name, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.EntityStateID, c.Name, c.IntegrationID, c.IntegrationName, payload,
	).Scan(&c.ID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) DeleteController(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, "DELETE FROM controllers WHERE id = $1", id)
	return tx.touch(requireRow(res, err, "controller %d", id))
}

func (tx *pgTx) SetEntityAttribute(ctx context.Context, entityID int64, name, value string, attrType model.AttributeType, editable bool) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO entity_attributes (entity_id, name, value, attribute_type, is_editable)
		VALUES ($1, $2, $3, $4, $5)`,
		entityID, name, value, attrType, editable)
	return tx.touch(mapError(err))
}

func (tx *pgTx) DeleteEntityAttribute(ctx context.Context, entityID int64, name string) error {
	_, err := tx.q.ExecContext(ctx,
		"DELETE FROM entity_attributes WHERE entity_id = $1 AND name = $2", entityID, name)
	return tx.touch(mapError(err))
}

func (tx *pgTx) CreateDelegation(ctx context.Context, d *model.EntityStateDelegation) error {
	err := tx.q.QueryRowxContext(ctx, `
		INSERT INTO entity_state_delegations (entity_state_id, delegate_entity_id)
		VALUES ($1, $2)
		RETURNING id`,
		d.EntityStateID, d.DelegateEntityID,
	).Scan(&d.ID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) DeleteDelegation(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, "DELETE FROM entity_state_delegations WHERE id = $1", id)
	return tx.touch(requireRow(res, err, "delegation %d", id))
}

func (tx *pgTx) AddEntityToView(ctx context.Context, entityID, viewID int64) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO entity_views (entity_id, view_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, entityID, viewID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) RemoveEntityFromView(ctx context.Context, entityID, viewID int64) error {
	_, err := tx.q.ExecContext(ctx,
		"DELETE FROM entity_views WHERE entity_id = $1 AND view_id = $2", entityID, viewID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) SetEntityPosition(ctx context.Context, p *model.EntityPosition) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO entity_positions (entity_id, location_id, x, y, scale, rotation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity_id, location_id)
		DO UPDATE SET x = EXCLUDED.x, y = EXCLUDED.y, scale = EXCLUDED.scale, rotation = EXCLUDED.rotation`,
		p.EntityID, p.LocationID, p.X, p.Y, p.Scale, p.Rotation)
	return tx.touch(mapError(err))
}

func (tx *pgTx) SetEntityPath(ctx context.Context, p *model.EntityPath) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO entity_paths (entity_id, location_id, svg_path)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_id, location_id)
		DO UPDATE SET svg_path = EXCLUDED.svg_path`,
		p.EntityID, p.LocationID, p.SVGPath)
	return tx.touch(mapError(err))
}

func (tx *pgTx) AddEntityToCollection(ctx context.Context, collectionID, entityID int64) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO collection_entities (collection_id, entity_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, collectionID, entityID)
	return tx.touch(mapError(err))
}

func (tx *pgTx) UpsertEventDefinition(ctx context.Context, d *model.EventDefinition) error {
	err := tx.q.QueryRowxContext(ctx, `
		INSERT INTO event_definitions (entity_state_id, event_type, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_state_id, event_type)
		DO UPDATE SET label = EXCLUDED.label
		RETURNING id`,
		d.EntityStateID, d.EventType, d.Label,
	).Scan(&d.ID)
	return tx.touch(mapError(err))
}

// Integration configuration rows stay outside the entity-model broadcast.

func (tx *pgTx) SetIntegrationEnabled(ctx context.Context, integrationID string, enabled bool) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO integration_records (integration_id, enabled) VALUES ($1, $2)
		ON CONFLICT (integration_id) DO UPDATE SET enabled = EXCLUDED.enabled`,
		integrationID, enabled)
	return mapError(err)
}

func (tx *pgTx) PutIntegrationAttribute(ctx context.Context, attr model.IntegrationAttribute) error {
	_, err := tx.q.ExecContext(ctx, `
		INSERT INTO integration_attributes (integration_id, name, value, is_required, is_secret)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (integration_id, name)
		DO UPDATE SET value = EXCLUDED.value, is_required = EXCLUDED.is_required, is_secret = EXCLUDED.is_secret`,
		attr.IntegrationID, attr.Name, attr.Value, attr.IsRequired, attr.IsSecret)
	return mapError(err)
}
