// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package postgres

import (
	"context"

	"github.com/DataDog/hearth/pkg/model"
)

func (s *Store) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	return getEntity(ctx, s.db, id)
}

func (s *Store) GetEntityByKey(ctx context.Context, key model.IntegrationKey) (*model.Entity, error) {
	return getEntityByKey(ctx, s.db, key)
}

func (s *Store) ListEntitiesForIntegration(ctx context.Context, integrationID string) ([]*model.Entity, error) {
	return listEntitiesForIntegration(ctx, s.db, integrationID)
}

func (s *Store) GetEntityState(ctx context.Context, id int64) (*model.EntityState, error) {
	return getEntityState(ctx, s.db, id)
}

func (s *Store) ListStatesForEntity(ctx context.Context, entityID int64) ([]*model.EntityState, error) {
	return listStatesForEntity(ctx, s.db, entityID)
}

func (s *Store) ListSensors(ctx context.Context) ([]model.Sensor, error) {
	return listSensors(ctx, s.db)
}

func (s *Store) ListSensorsForState(ctx context.Context, stateID int64) ([]model.Sensor, error) {
	return listSensorsForState(ctx, s.db, stateID)
}

func (s *Store) GetControllerByKey(ctx context.Context, key model.IntegrationKey) (*model.Controller, error) {
	return getControllerByKey(ctx, s.db, key)
}

func (s *Store) ListControllersForState(ctx context.Context, stateID int64) ([]model.Controller, error) {
	return listControllersForState(ctx, s.db, stateID)
}

func (s *Store) ListAttributesForEntity(ctx context.Context, entityID int64) ([]model.EntityAttribute, error) {
	return listAttributesForEntity(ctx, s.db, entityID)
}

func (s *Store) ListDelegationsForState(ctx context.Context, stateID int64) ([]model.EntityStateDelegation, error) {
	return listDelegationsForState(ctx, s.db, stateID)
}

func (s *Store) ListDelegationsForDelegate(ctx context.Context, delegateEntityID int64) ([]model.EntityStateDelegation, error) {
	return listDelegationsForDelegate(ctx, s.db, delegateEntityID)
}

func (s *Store) EntityHasUserRelationships(ctx context.Context, entityID int64) (bool, error) {
	return entityHasUserRelationships(ctx, s.db, entityID)
}

func (s *Store) ListViewsForEntity(ctx context.Context, entityID int64) ([]model.EntityView, error) {
	return listViewsForEntity(ctx, s.db, entityID)
}

func (s *Store) GetIntegrationRecord(ctx context.Context, integrationID string) (*model.IntegrationRecord, error) {
	return getIntegrationRecord(ctx, s.db, integrationID)
}

func (s *Store) ListIntegrationAttributes(ctx context.Context, integrationID string) ([]model.IntegrationAttribute, error) {
	return listIntegrationAttributes(ctx, s.db, integrationID)
}
