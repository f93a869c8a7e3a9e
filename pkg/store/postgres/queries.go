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
)

type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

const entityColumns = "id, name, entity_type, can_user_delete, integration_id, integration_name, created_at, updated_at"

func getEntity(ctx context.Context, q querier, id int64) (*model.Entity, error) {
	var e model.Entity
	err := sqlx.GetContext(ctx, q, &e, "SELECT "+entityColumns+" FROM entities WHERE id = $1", id)
	if err != nil {
		return nil, notFoundf(err, "entity %d", id)
	}
	return &e, nil
}

func getEntityByKey(ctx context.Context, q querier, key model.IntegrationKey) (*model.Entity, error) {
	var e model.Entity
	err := sqlx.GetContext(ctx, q, &e,
		"SELECT "+entityColumns+" FROM entities WHERE integration_id = $1 AND integration_name = $2",
		key.IntegrationID, key.IntegrationName)
	if err != nil {
		return nil, notFoundf(err, "entity with key %s", key)
	}
	return &e, nil
}

func listEntitiesForIntegration(ctx context.Context, q querier, integrationID string) ([]*model.Entity, error) {
	var out []*model.Entity
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT "+entityColumns+" FROM entities WHERE integration_id = $1 ORDER BY id", integrationID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

const stateColumns = "id, entity_id, state_type, name, value_range, units"

func getEntityState(ctx context.Context, q querier, id int64) (*model.EntityState, error) {
	var s model.EntityState
	err := sqlx.GetContext(ctx, q, &s, "SELECT "+stateColumns+" FROM entity_states WHERE id = $1", id)
	if err != nil {
		return nil, notFoundf(err, "entity state %d", id)
	}
	return &s, nil
}

func listStatesForEntity(ctx context.Context, q querier, entityID int64) ([]*model.EntityState, error) {
	var out []*model.EntityState
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT "+stateColumns+" FROM entity_states WHERE entity_id = $1 ORDER BY id", entityID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

const sensorColumns = "id, entity_state_id, name, integration_id, integration_name"

func listSensors(ctx context.Context, q querier) ([]model.Sensor, error) {
	var out []model.Sensor
	err := sqlx.SelectContext(ctx, q, &out, "SELECT "+sensorColumns+" FROM sensors ORDER BY id")
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func listSensorsForState(ctx context.Context, q querier, stateID int64) ([]model.Sensor, error) {
	var out []model.Sensor
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT "+sensorColumns+" FROM sensors WHERE entity_state_id = $1 ORDER BY id", stateID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

type controllerRow struct {
	ID              int64  `db:"id"`
	EntityStateID   int64  `db:"entity_state_id"`
	Name            string `db:"name"`
	IntegrationID   string `db:"integration_id"`
	IntegrationName string `db:"integration_name"`
	Payload         []byte `db:"payload"`
}

func (r controllerRow) toModel() (model.Controller, error) {
	c := model.Controller{
		ID:              r.ID,
		EntityStateID:   r.EntityStateID,
		Name:            r.Name,
		IntegrationID:   r.IntegrationID,
		IntegrationName: r.IntegrationName,
	}
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, &c.Payload); err != nil {
			return c, mapError(err)
		}
	}
	return c, nil
}

const controllerColumns = "id, entity_state_id, name, integration_id, integration_name, payload"

func getControllerByKey(ctx context.Context, q querier, key model.IntegrationKey) (*model.Controller, error) {
	var row controllerRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+controllerColumns+" FROM controllers WHERE integration_id = $1 AND integration_name = $2",
		key.IntegrationID, key.IntegrationName)
	if err != nil {
		return nil, notFoundf(err, "controller with key %s", key)
	}
	c, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func listControllersForState(ctx context.Context, q querier, stateID int64) ([]model.Controller, error) {
	var rows []controllerRow
	err := sqlx.SelectContext(ctx, q, &rows,
		"SELECT "+controllerColumns+" FROM controllers WHERE entity_state_id = $1 ORDER BY id", stateID)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]model.Controller, 0, len(rows))
	for _, r := range rows {
		c, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func listAttributesForEntity(ctx context.Context, q querier, entityID int64) ([]model.EntityAttribute, error) {
	var out []model.EntityAttribute
	err := sqlx.SelectContext(ctx, q, &out, `
		SELECT DISTINCT ON (name) id, entity_id, name, value, attribute_type, is_editable, created_at
		FROM entity_attributes WHERE entity_id = $1
		ORDER BY name, id DESC`, entityID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func listDelegationsForState(ctx context.Context, q querier, stateID int64) ([]model.EntityStateDelegation, error) {
	var out []model.EntityStateDelegation
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT id, entity_state_id, delegate_entity_id FROM entity_state_delegations WHERE entity_state_id = $1 ORDER BY id",
		stateID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func listDelegationsForDelegate(ctx context.Context, q querier, delegateEntityID int64) ([]model.EntityStateDelegation, error) {
	var out []model.EntityStateDelegation
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT id, entity_state_id, delegate_entity_id FROM entity_state_delegations WHERE delegate_entity_id = $1 ORDER BY id",
		delegateEntityID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func entityHasUserRelationships(ctx context.Context, q querier, entityID int64) (bool, error) {
	var has bool
	err := sqlx.GetContext(ctx, q, &has, `
		SELECT EXISTS (SELECT 1 FROM entity_positions WHERE entity_id = $1)
		    OR EXISTS (SELECT 1 FROM entity_paths WHERE entity_id = $1)
		    OR EXISTS (SELECT 1 FROM entity_views WHERE entity_id = $1)
		    OR EXISTS (SELECT 1 FROM collection_entities WHERE entity_id = $1)
		    OR EXISTS (SELECT 1 FROM entity_state_delegations WHERE delegate_entity_id = $1)
		    OR EXISTS (SELECT 1 FROM entity_state_delegations d
		               JOIN entity_states s ON s.id = d.entity_state_id
		               WHERE s.entity_id = $1)`, entityID)
	if err != nil {
		return false, mapError(err)
	}
	return has, nil
}

func listViewsForEntity(ctx context.Context, q querier, entityID int64) ([]model.EntityView, error) {
	var out []model.EntityView
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT entity_id, view_id FROM entity_views WHERE entity_id = $1 ORDER BY view_id", entityID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func getIntegrationRecord(ctx context.Context, q querier, integrationID string) (*model.IntegrationRecord, error) {
	var r model.IntegrationRecord
	err := sqlx.GetContext(ctx, q, &r,
		"SELECT integration_id, enabled FROM integration_records WHERE integration_id = $1", integrationID)
	if err != nil {
		return nil, notFoundf(err, "integration record %s", integrationID)
	}
	return &r, nil
}

func listIntegrationAttributes(ctx context.Context, q querier, integrationID string) ([]model.IntegrationAttribute, error) {
	var out []model.IntegrationAttribute
	err := sqlx.SelectContext(ctx, q, &out,
		"SELECT integration_id, name, value, is_required, is_secret FROM integration_attributes WHERE integration_id = $1 ORDER BY name",
		integrationID)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
