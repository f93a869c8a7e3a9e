// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package store defines the transactional persistence boundary of the hub.
// Two backends implement it: store/postgres for production and store/memory
// for tests and single-node setups.
package store

import (
	"context"

	"github.com/DataDog/hearth/pkg/model"
)

// Queries is the read surface, available both on the Store and inside a Tx.
type Queries interface {
	GetEntity(ctx context.Context, id int64) (*model.Entity, error)
	GetEntityByKey(ctx context.Context, key model.IntegrationKey) (*model.Entity, error)
	ListEntitiesForIntegration(ctx context.Context, integrationID string) ([]*model.Entity, error)

	GetEntityState(ctx context.Context, id int64) (*model.EntityState, error)
	ListStatesForEntity(ctx context.Context, entityID int64) ([]*model.EntityState, error)

	ListSensors(ctx context.Context) ([]model.Sensor, error)
	ListSensorsForState(ctx context.Context, stateID int64) ([]model.Sensor, error)
	GetControllerByKey(ctx context.Context, key model.IntegrationKey) (*model.Controller, error)
	ListControllersForState(ctx context.Context, stateID int64) ([]model.Controller, error)

	// ListAttributesForEntity returns the current value per attribute name.
	ListAttributesForEntity(ctx context.Context, entityID int64) ([]model.EntityAttribute, error)

	ListDelegationsForState(ctx context.Context, stateID int64) ([]model.EntityStateDelegation, error)
	ListDelegationsForDelegate(ctx context.Context, delegateEntityID int64) ([]model.EntityStateDelegation, error)

	// EntityHasUserRelationships reports whether the user attached anything
	// the sync engine does not own: geometry, view or collection
	// memberships, or delegations on either side.
	EntityHasUserRelationships(ctx context.Context, entityID int64) (bool, error)
	ListViewsForEntity(ctx context.Context, entityID int64) ([]model.EntityView, error)

	GetIntegrationRecord(ctx context.Context, integrationID string) (*model.IntegrationRecord, error)
	ListIntegrationAttributes(ctx context.Context, integrationID string) ([]model.IntegrationAttribute, error)
}

// Tx is the write surface. Create methods fill the row's ID on success.
// Deletes cascade ownership per the data model; missing targets return
// a NotFound error.
type Tx interface {
	Queries

	CreateEntity(ctx context.Context, e *model.Entity) error
	UpdateEntity(ctx context.Context, e *model.Entity) error
	DeleteEntity(ctx context.Context, id int64) error

	CreateEntityState(ctx context.Context, s *model.EntityState) error
	UpdateEntityState(ctx context.Context, s *model.EntityState) error
	DeleteEntityState(ctx context.Context, id int64) error

	CreateSensor(ctx context.Context, s *model.Sensor) error
	DeleteSensor(ctx context.Context, id int64) error
	CreateController(ctx context.Context, c *model.Controller) error
	DeleteController(ctx context.Context, id int64) error

	// SetEntityAttribute inserts a new history row; the previous value for
	// the same name stays in the table and stops being current.
	SetEntityAttribute(ctx context.Context, entityID int64, name, value string, attrType model.AttributeType, editable bool) error
	DeleteEntityAttribute(ctx context.Context, entityID int64, name string) error

	CreateDelegation(ctx context.Context, d *model.EntityStateDelegation) error
	DeleteDelegation(ctx context.Context, id int64) error

	AddEntityToView(ctx context.Context, entityID, viewID int64) error
	RemoveEntityFromView(ctx context.Context, entityID, viewID int64) error
	SetEntityPosition(ctx context.Context, p *model.EntityPosition) error
	SetEntityPath(ctx context.Context, p *model.EntityPath) error
	AddEntityToCollection(ctx context.Context, collectionID, entityID int64) error

	UpsertEventDefinition(ctx context.Context, d *model.EventDefinition) error

	SetIntegrationEnabled(ctx context.Context, integrationID string, enabled bool) error
	PutIntegrationAttribute(ctx context.Context, attr model.IntegrationAttribute) error
}

// Store is the persistence boundary owned by the process root.
type Store interface {
	Queries

	// RunInTransaction runs fn inside one transaction. A non-nil error
	// rolls everything back. After a commit that touched entity, state,
	// attribute, delegation, geometry or view rows, every registered
	// reload listener fires exactly once, however many rows changed.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	// RegisterReloadListener subscribes fn to the post-commit change
	// broadcast. Listeners must be fast and must not start transactions.
	RegisterReloadListener(name string, fn func())

	// TryNamedLock acquires the named exclusion lock without waiting.
	// A busy lock returns a temporary error; the caller surfaces it as
	// "already running". The returned func releases the lock.
	TryNamedLock(ctx context.Context, name string) (func(), error)

	Close() error
}
