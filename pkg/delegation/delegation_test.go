// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package delegation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/store/memory"
)

// camera builds an entity with a movement and a video stream state, the
// shape that triggers default delegation twice over.
func camera(t *testing.T, st store.Store, name string) (*model.Entity, []*model.EntityState) {
	t.Helper()
	ctx := context.Background()
	e := &model.Entity{Name: name, EntityType: model.EntityTypeCamera, IntegrationID: "hass", IntegrationName: name}
	require.NoError(t, st.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.CreateEntity(ctx, e); err != nil {
			return err
		}
		for _, stateType := range []model.EntityStateType{model.StateTypeMovement, model.StateTypeVideoStream} {
			s := &model.EntityState{EntityID: e.ID, StateType: stateType, Name: string(stateType)}
			if err := tx.CreateEntityState(ctx, s); err != nil {
				return err
			}
		}
		return nil
	}))
	states, err := st.ListStatesForEntity(ctx, e.ID)
	require.NoError(t, err)
	return e, states
}

func TestEnsureDefaultDelegates(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	e, _ := camera(t, st, "drive_cam")

	require.NoError(t, r.EnsureDefaultDelegates(ctx, e))

	delegates, err := r.Delegates(ctx, e)
	require.NoError(t, err)
	require.Len(t, delegates, 1, "both states share one Area delegate")
	assert.Equal(t, model.EntityTypeArea, delegates[0].EntityType)
	assert.Equal(t, "drive_cam - Area", delegates[0].Name)
	assert.Empty(t, delegates[0].IntegrationID, "delegates carry no integration")
	assert.True(t, delegates[0].CanUserDelete)
}

func TestEnsureDefaultDelegatesIsIdempotent(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	e, _ := camera(t, st, "drive_cam")

	require.NoError(t, r.EnsureDefaultDelegates(ctx, e))
	require.NoError(t, r.EnsureDefaultDelegates(ctx, e))

	delegates, err := r.Delegates(ctx, e)
	require.NoError(t, err)
	assert.Len(t, delegates, 1, "second run creates nothing")
}

func TestEnsureDefaultDelegatesReusesAttachedDelegate(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	e, states := camera(t, st, "drive_cam")

	// Pre-wire one state to a hand-made area; the other state should
	// reuse it instead of spawning a second delegate.
	area := &model.Entity{Name: "Driveway", EntityType: model.EntityTypeArea, CanUserDelete: true}
	require.NoError(t, st.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.CreateEntity(ctx, area); err != nil {
			return err
		}
		return tx.CreateDelegation(ctx, &model.EntityStateDelegation{
			EntityStateID:    states[0].ID,
			DelegateEntityID: area.ID,
		})
	}))

	require.NoError(t, r.EnsureDefaultDelegates(ctx, e))

	delegates, err := r.Delegates(ctx, e)
	require.NoError(t, err)
	require.Len(t, delegates, 1)
	assert.Equal(t, "Driveway", delegates[0].Name)
}

func TestPrincipals(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	e1, _ := camera(t, st, "cam_one")
	e2, _ := camera(t, st, "cam_two")

	require.NoError(t, r.EnsureDefaultDelegates(ctx, e1))
	delegates, err := r.Delegates(ctx, e1)
	require.NoError(t, err)
	area := delegates[0]

	// Wire cam_two's movement state to the same area.
	states2, err := st.ListStatesForEntity(ctx, e2.ID)
	require.NoError(t, err)
	require.NoError(t, st.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.CreateDelegation(ctx, &model.EntityStateDelegation{
			EntityStateID:    states2[0].ID,
			DelegateEntityID: area.ID,
		})
	}))

	principals, err := r.Principals(ctx, area)
	require.NoError(t, err)
	require.Len(t, principals, 2)
	ids := []int64{principals[0].ID, principals[1].ID}
	assert.Contains(t, ids, e1.ID)
	assert.Contains(t, ids, e2.ID)
}

func TestRemoveDelegatesFromViewIfOrphaned(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	const viewID = int64(1)

	e1, _ := camera(t, st, "cam_one")
	require.NoError(t, r.EnsureDefaultDelegates(ctx, e1))
	delegates, err := r.Delegates(ctx, e1)
	require.NoError(t, err)
	area := delegates[0]

	require.NoError(t, st.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.AddEntityToView(ctx, area.ID, viewID)
	}))

	// Sole principal: membership goes, entity stays.
	require.NoError(t, r.RemoveDelegatesFromViewIfOrphaned(ctx, e1, viewID))
	views, err := st.ListViewsForEntity(ctx, area.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
	_, err = st.GetEntity(ctx, area.ID)
	assert.NoError(t, err, "delegate entity survives")
}

func TestRemoveDelegatesKeepsSharedDelegate(t *testing.T) {
	st := memory.New()
	r := NewResolver(st)
	ctx := context.Background()
	const viewID = int64(1)

	e1, _ := camera(t, st, "cam_one")
	e2, _ := camera(t, st, "cam_two")
	require.NoError(t, r.EnsureDefaultDelegates(ctx, e1))
	delegates, err := r.Delegates(ctx, e1)
	require.NoError(t, err)
	area := delegates[0]

	states2, err := st.ListStatesForEntity(ctx, e2.ID)
	require.NoError(t, err)
	require.NoError(t, st.RunInTransaction(ctx, func(tx store.Tx) error {
		if err := tx.CreateDelegation(ctx, &model.EntityStateDelegation{
			EntityStateID:    states2[0].ID,
			DelegateEntityID: area.ID,
		}); err != nil {
			return err
		}
		return tx.AddEntityToView(ctx, area.ID, viewID)
	}))

	require.NoError(t, r.RemoveDelegatesFromViewIfOrphaned(ctx, e1, viewID))
	views, err := st.ListViewsForEntity(ctx, area.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1, "shared delegate keeps its view membership")
}
