// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package hass

import (
	"context"
	"fmt"
	"strings"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/telemetry"
	"github.com/DataDog/hearth/pkg/util/log"
)

// syncLockName serializes sync runs across the process and, on postgres,
// across processes.
const syncLockName = "sync:" + IntegrationID

// attrInsteonAddress is the predefined entity attribute carrying the
// stable device address.
const attrInsteonAddress = "insteon_address"

// stateLister is the slice of Client the engine needs; tests substitute
// a canned lister.
type stateLister interface {
	States(ctx context.Context) ([]RemoteState, error)
}

// SyncEngine reconciles the remote state list into local entities,
// states, sensors and controllers.
type SyncEngine struct {
	store  store.Store
	client stateLister
	// addAlarmEvents reads the integration's "add alarm events" flag at
	// run time, so settings changes apply without rebuilding the engine.
	addAlarmEvents func() bool
}

// NewSyncEngine builds an engine over the given store and state source.
func NewSyncEngine(st store.Store, client stateLister, addAlarmEvents func() bool) *SyncEngine {
	if addAlarmEvents == nil {
		addAlarmEvents = func() bool { return false }
	}
	return &SyncEngine{store: st, client: client, addAlarmEvents: addAlarmEvents}
}

// Run executes one full reconciliation. Per-device problems accumulate
// in the result; only fetch failures and a busy sync lock return an
// error.
func (e *SyncEngine) Run(ctx context.Context) (*integrations.ProcessingResult, error) {
	release, err := e.store.TryNamedLock(ctx, syncLockName)
	if err != nil {
		return nil, err
	}
	defer release()

	res := integrations.NewProcessingResult()
	log.Infof("sync %s: run %s starting", IntegrationID, res.RunID)

	states, err := e.client.States(ctx)
	if err != nil {
		return nil, err
	}
	devices := GroupStates(states)
	res.Logf("fetched %d remote states in %d devices", len(states), len(devices))

	err = e.store.RunInTransaction(ctx, func(tx store.Tx) error {
		seen := make(map[model.IntegrationKey]struct{}, len(devices))
		for _, dev := range devices {
			key := model.IntegrationKey{IntegrationID: IntegrationID, IntegrationName: dev.ShortName}
			seen[key] = struct{}{}
			e.applyDevice(ctx, tx, dev, key, res)
		}
		return e.removeUnreported(ctx, tx, seen, res)
	})
	if err != nil {
		return nil, err
	}

	log.Infof("sync %s: run %s finished, %d messages, %d errors",
		IntegrationID, res.RunID, len(res.Messages), len(res.Errors))
	return res, nil
}

// applyDevice creates or updates one device's rows. A panic while
// processing a device becomes one entry in the result's errors.
func (e *SyncEngine) applyDevice(ctx context.Context, tx store.Tx, dev *Device, key model.IntegrationKey, res *integrations.ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			res.Failf("device %s: panic: %v", key.IntegrationName, r)
		}
	}()

	existing, err := tx.GetEntityByKey(ctx, key)
	switch {
	case errors.IsNotFound(err):
		if err := e.createDevice(ctx, tx, dev, key, res); err != nil {
			res.Failf("device %s: create: %v", key.IntegrationName, err)
			return
		}
		telemetry.SyncEntities.WithLabelValues(IntegrationID, "created").Inc()
		res.Logf("Created Home Assistant entity: %s", dev.DisplayName())
	case err != nil:
		res.Failf("device %s: lookup: %v", key.IntegrationName, err)
	default:
		if err := e.updateDevice(ctx, tx, dev, existing, res); err != nil {
			res.Failf("device %s: update: %v", key.IntegrationName, err)
		}
	}
}

func (e *SyncEngine) createDevice(ctx context.Context, tx store.Tx, dev *Device, key model.IntegrationKey, res *integrations.ProcessingResult) error {
	entity := &model.Entity{
		Name:            dev.DisplayName(),
		EntityType:      deriveEntityType(dev),
		CanUserDelete:   false,
		IntegrationID:   key.IntegrationID,
		IntegrationName: key.IntegrationName,
	}
	if err := tx.CreateEntity(ctx, entity); err != nil {
		return err
	}
	if dev.GroupID != "" {
		if err := tx.SetEntityAttribute(ctx, entity.ID, attrInsteonAddress, dev.GroupID, model.AttributePredefined, false); err != nil {
			return err
		}
	}
	for _, remote := range dev.States {
		if err := e.createState(ctx, tx, entity.ID, remote); err != nil {
			res.Failf("device %s: state %s: %v", key.IntegrationName, remote.EntityID, err)
		}
	}
	return nil
}

// createState adds the EntityState plus its sensor, its controller when
// the domain is controllable, and the alarm event hook when configured.
func (e *SyncEngine) createState(ctx context.Context, tx store.Tx, entityID int64, remote RemoteState) error {
	stateType, valueRange, units := deriveStateType(remote)
	state := &model.EntityState{
		EntityID:   entityID,
		StateType:  stateType,
		Name:       remote.FriendlyName(),
		ValueRange: valueRange,
		Units:      units,
	}
	if err := tx.CreateEntityState(ctx, state); err != nil {
		return err
	}

	sensor := &model.Sensor{
		EntityStateID:   state.ID,
		Name:            remote.FriendlyName(),
		IntegrationID:   IntegrationID,
		IntegrationName: remote.EntityID,
	}
	if err := tx.CreateSensor(ctx, sensor); err != nil {
		return err
	}

	if isControllable(remote) {
		controller := &model.Controller{
			EntityStateID:   state.ID,
			Name:            remote.FriendlyName(),
			IntegrationID:   IntegrationID,
			IntegrationName: remote.EntityID,
		}
		if err := tx.CreateController(ctx, controller); err != nil {
			return err
		}
	}

	if eventType, ok := alarmEventFor(remote); ok && e.addAlarmEvents() {
		def := &model.EventDefinition{
			EntityStateID: state.ID,
			EventType:     eventType,
			Label:         fmt.Sprintf("%s: %s", remote.FriendlyName(), strings.ReplaceAll(eventType, "_", " ")),
		}
		if err := tx.UpsertEventDefinition(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// updateDevice diffs an existing entity against the remote device: name
// and type drift, then the state set keyed by remote entity id.
func (e *SyncEngine) updateDevice(ctx context.Context, tx store.Tx, dev *Device, entity *model.Entity, res *integrations.ProcessingResult) error {
	name, entityType := dev.DisplayName(), deriveEntityType(dev)
	if entity.Name != name || entity.EntityType != entityType {
		entity.Name = name
		entity.EntityType = entityType
		if err := tx.UpdateEntity(ctx, entity); err != nil {
			return err
		}
		res.Logf("updated entity %s", entity.Key())
	}

	if dev.GroupID != "" {
		if err := e.ensureInsteonAttribute(ctx, tx, entity.ID, dev.GroupID); err != nil {
			return err
		}
	}

	localStates, err := tx.ListStatesForEntity(ctx, entity.ID)
	if err != nil {
		return err
	}

	// Local states keyed by the remote entity id their sensor reports for.
	localByRemote := map[string]*model.EntityState{}
	for _, st := range localStates {
		sensors, err := tx.ListSensorsForState(ctx, st.ID)
		if err != nil {
			return err
		}
		for _, sensor := range sensors {
			localByRemote[sensor.IntegrationName] = st
		}
	}

	remoteIDs := make(map[string]struct{}, len(dev.States))
	for _, remote := range dev.States {
		remoteIDs[remote.EntityID] = struct{}{}
		if _, ok := localByRemote[remote.EntityID]; ok {
			continue
		}
		if err := e.createState(ctx, tx, entity.ID, remote); err != nil {
			res.Failf("device %s: state %s: %v", entity.IntegrationName, remote.EntityID, err)
			continue
		}
		res.Logf("added state %s to entity %s", remote.EntityID, entity.Key())
	}

	for remoteID, st := range localByRemote {
		if _, reported := remoteIDs[remoteID]; reported {
			continue
		}
		if err := tx.DeleteEntityState(ctx, st.ID); err != nil {
			return err
		}
		res.Logf("removed state %s from entity %s", remoteID, entity.Key())
	}
	return nil
}

func (e *SyncEngine) ensureInsteonAttribute(ctx context.Context, tx store.Tx, entityID int64, addr string) error {
	attrs, err := tx.ListAttributesForEntity(ctx, entityID)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		if a.Name == attrInsteonAddress && a.Value == addr {
			return nil
		}
	}
	return tx.SetEntityAttribute(ctx, entityID, attrInsteonAddress, addr, model.AttributePredefined, false)
}

// removeUnreported applies intelligent deletion to entities the remote
// stopped reporting: entities the user enriched survive, bare discovered
// entities cascade away.
func (e *SyncEngine) removeUnreported(ctx context.Context, tx store.Tx, seen map[model.IntegrationKey]struct{}, res *integrations.ProcessingResult) error {
	locals, err := tx.ListEntitiesForIntegration(ctx, IntegrationID)
	if err != nil {
		return err
	}
	for _, entity := range locals {
		if _, reported := seen[entity.Key()]; reported {
			continue
		}
		enriched, err := tx.EntityHasUserRelationships(ctx, entity.ID)
		if err != nil {
			return err
		}
		if enriched {
			res.Logf("kept entity %s: no longer reported but user data is attached", entity.Key())
			continue
		}
		if err := tx.DeleteEntity(ctx, entity.ID); err != nil {
			return err
		}
		telemetry.SyncEntities.WithLabelValues(IntegrationID, "removed").Inc()
		res.Logf("Removing Home Assistant entity: %s", entity.Name)
	}
	return nil
}
