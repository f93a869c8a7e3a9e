// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package memory

import (
	"context"
	"sync"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
)

// Store is the in-memory store backend.
type Store struct {
	mu   sync.RWMutex
	data *tables
	b    store.Broadcaster

	lockMu sync.Mutex
	locks  map[string]bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty memory store.
func New() *Store {
	return &Store{
		data:  newTables(),
		locks: map[string]bool{},
	}
}

// RunInTransaction implements store.Store. The whole store is the lock
// domain; rollback restores a pre-transaction snapshot.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	tx := &memTx{t: s.data}
	err := fn(tx)
	if err != nil {
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	dirty := tx.dirty
	s.mu.Unlock()

	if dirty {
		s.b.Fire()
	}
	return nil
}

// RegisterReloadListener implements store.Store.
func (s *Store) RegisterReloadListener(name string, fn func()) {
	s.b.Register(name, fn)
}

// TryNamedLock implements store.Store.
func (s *Store) TryNamedLock(_ context.Context, name string) (func(), error) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if s.locks[name] {
		return nil, errors.NewTemporaryf("lock %q is busy", name)
	}
	s.locks[name] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			s.lockMu.Lock()
			delete(s.locks, name)
			s.lockMu.Unlock()
		})
	}, nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Read surface on the store itself.

func (s *Store) GetEntity(_ context.Context, id int64) (*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getEntity(id)
}

func (s *Store) GetEntityByKey(_ context.Context, key model.IntegrationKey) (*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getEntityByKey(key)
}

func (s *Store) ListEntitiesForIntegration(_ context.Context, integrationID string) ([]*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listEntitiesForIntegration(integrationID), nil
}

func (s *Store) GetEntityState(_ context.Context, id int64) (*model.EntityState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getEntityState(id)
}

func (s *Store) ListStatesForEntity(_ context.Context, entityID int64) ([]*model.EntityState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listStatesForEntity(entityID), nil
}

func (s *Store) ListSensors(_ context.Context) ([]model.Sensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listSensors(), nil
}

func (s *Store) ListSensorsForState(_ context.Context, stateID int64) ([]model.Sensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listSensorsForState(stateID), nil
}

func (s *Store) GetControllerByKey(_ context.Context, key model.IntegrationKey) (*model.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getControllerByKey(key)
}

func (s *Store) ListControllersForState(_ context.Context, stateID int64) ([]model.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listControllersForState(stateID), nil
}

func (s *Store) ListAttributesForEntity(_ context.Context, entityID int64) ([]model.EntityAttribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listAttributesForEntity(entityID), nil
}

func (s *Store) ListDelegationsForState(_ context.Context, stateID int64) ([]model.EntityStateDelegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listDelegationsForState(stateID), nil
}

func (s *Store) ListDelegationsForDelegate(_ context.Context, delegateEntityID int64) ([]model.EntityStateDelegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listDelegationsForDelegate(delegateEntityID), nil
}

func (s *Store) EntityHasUserRelationships(_ context.Context, entityID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.entityHasUserRelationships(entityID), nil
}

func (s *Store) ListViewsForEntity(_ context.Context, entityID int64) ([]model.EntityView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listViewsForEntity(entityID), nil
}

func (s *Store) GetIntegrationRecord(_ context.Context, integrationID string) (*model.IntegrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getIntegrationRecord(integrationID)
}

func (s *Store) ListIntegrationAttributes(_ context.Context, integrationID string) ([]model.IntegrationAttribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listIntegrationAttributes(integrationID), nil
}

// memTx runs under the store's write lock; no further locking needed.
type memTx struct {
	t     *tables
	dirty bool
}

var _ store.Tx = (*memTx)(nil)

func (tx *memTx) touch(err error) error {
	if err == nil {
		tx.dirty = true
	}
	return err
}

func (tx *memTx) GetEntity(_ context.Context, id int64) (*model.Entity, error) {
	return tx.t.getEntity(id)
}

func (tx *memTx) GetEntityByKey(_ context.Context, key model.IntegrationKey) (*model.Entity, error) {
	return tx.t.getEntityByKey(key)
}

func (tx *memTx) ListEntitiesForIntegration(_ context.Context, integrationID string) ([]*model.Entity, error) {
	return tx.t.listEntitiesForIntegration(integrationID), nil
}

func (tx *memTx) GetEntityState(_ context.Context, id int64) (*model.EntityState, error) {
	return tx.t.getEntityState(id)
}

func (tx *memTx) ListStatesForEntity(_ context.Context, entityID int64) ([]*model.EntityState, error) {
	return tx.t.listStatesForEntity(entityID), nil
}

func (tx *memTx) ListSensors(_ context.Context) ([]model.Sensor, error) {
	return tx.t.listSensors(), nil
}

func (tx *memTx) ListSensorsForState(_ context.Context, stateID int64) ([]model.Sensor, error) {
	return tx.t.listSensorsForState(stateID), nil
}

func (tx *memTx) GetControllerByKey(_ context.Context, key model.IntegrationKey) (*model.Controller, error) {
	return tx.t.getControllerByKey(key)
}

func (tx *memTx) ListControllersForState(_ context.Context, stateID int64) ([]model.Controller, error) {
	return tx.t.listControllersForState(stateID), nil
}

func (tx *memTx) ListAttributesForEntity(_ context.Context, entityID int64) ([]model.EntityAttribute, error) {
	return tx.t.listAttributesForEntity(entityID), nil
}

func (tx *memTx) ListDelegationsForState(_ context.Context, stateID int64) ([]model.EntityStateDelegation, error) {
	return tx.t.listDelegationsForState(stateID), nil
}

func (tx *memTx) ListDelegationsForDelegate(_ context.Context, delegateEntityID int64) ([]model.EntityStateDelegation, error) {
	return tx.t.listDelegationsForDelegate(delegateEntityID), nil
}

func (tx *memTx) EntityHasUserRelationships(_ context.Context, entityID int64) (bool, error) {
	return tx.t.entityHasUserRelationships(entityID), nil
}

func (tx *memTx) ListViewsForEntity(_ context.Context, entityID int64) ([]model.EntityView, error) {
	return tx.t.listViewsForEntity(entityID), nil
}

func (tx *memTx) GetIntegrationRecord(_ context.Context, integrationID string) (*model.IntegrationRecord, error) {
	return tx.t.getIntegrationRecord(integrationID)
}

func (tx *memTx) ListIntegrationAttributes(_ context.Context, integrationID string) ([]model.IntegrationAttribute, error) {
	return tx.t.listIntegrationAttributes(integrationID), nil
}

func (tx *memTx) CreateEntity(_ context.Context, e *model.Entity) error {
	return tx.touch(tx.t.createEntity(e))
}

func (tx *memTx) UpdateEntity(_ context.Context, e *model.Entity) error {
	return tx.touch(tx.t.updateEntity(e))
}

func (tx *memTx) DeleteEntity(_ context.Context, id int64) error {
	return tx.touch(tx.t.deleteEntity(id))
}

func (tx *memTx) CreateEntityState(_ context.Context, s *model.EntityState) error {
	return tx.touch(tx.t.createEntityState(s))
}

func (tx *memTx) UpdateEntityState(_ context.Context, s *model.EntityState) error {
	return tx.touch(tx.t.updateEntityState(s))
}

func (tx *memTx) DeleteEntityState(_ context.Context, id int64) error {
	return tx.touch(tx.t.deleteEntityState(id))
}

func (tx *memTx) CreateSensor(_ context.Context, s *model.Sensor) error {
	return tx.touch(tx.t.createSensor(s))
}

func (tx *memTx) DeleteSensor(_ context.Context, id int64) error {
	return tx.touch(tx.t.deleteSensor(id))
}

func (tx *memTx) CreateController(_ context.Context, c *model.Controller) error {
	return tx.touch(tx.t.createController(c))
}

func (tx *memTx) DeleteController(_ context.Context, id int64) error {
	return tx.touch(tx.t.deleteController(id))
}

func (tx *memTx) SetEntityAttribute(_ context.Context, entityID int64, name, value string, attrType model.AttributeType, editable bool) error {
	return tx.touch(tx.t.setEntityAttribute(entityID, name, value, attrType, editable))
}

func (tx *memTx) DeleteEntityAttribute(_ context.Context, entityID int64, name string) error {
	return tx.touch(tx.t.deleteEntityAttribute(entityID, name))
}

func (tx *memTx) CreateDelegation(_ context.Context, d *model.EntityStateDelegation) error {
	return tx.touch(tx.t.createDelegation(d))
}

func (tx *memTx) DeleteDelegation(_ context.Context, id int64) error {
	return tx.touch(tx.t.deleteDelegation(id))
}

func (tx *memTx) AddEntityToView(_ context.Context, entityID, viewID int64) error {
	return tx.touch(tx.t.addEntityToView(entityID, viewID))
}

func (tx *memTx) RemoveEntityFromView(_ context.Context, entityID, viewID int64) error {
	return tx.touch(tx.t.removeEntityFromView(entityID, viewID))
}

func (tx *memTx) SetEntityPosition(_ context.Context, p *model.EntityPosition) error {
	return tx.touch(tx.t.setEntityPosition(p))
}

func (tx *memTx) SetEntityPath(_ context.Context, p *model.EntityPath) error {
	return tx.touch(tx.t.setEntityPath(p))
}

func (tx *memTx) AddEntityToCollection(_ context.Context, collectionID, entityID int64) error {
	return tx.touch(tx.t.addEntityToCollection(collectionID, entityID))
}

func (tx *memTx) UpsertEventDefinition(_ context.Context, d *model.EventDefinition) error {
	return tx.touch(tx.t.upsertEventDefinition(d))
}

// Integration configuration rows are not part of the entity-model change
// broadcast; listeners for those changes hang off the integration manager.

func (tx *memTx) SetIntegrationEnabled(_ context.Context, integrationID string, enabled bool) error {
	return tx.t.setIntegrationEnabled(integrationID, enabled)
}

func (tx *memTx) PutIntegrationAttribute(_ context.Context, attr model.IntegrationAttribute) error {
	return tx.t.putIntegrationAttribute(attr)
}
