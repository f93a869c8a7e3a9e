// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package delegation resolves the edges between principal entities and
// the delegate entities that visually stand in for their states.
package delegation

import (
	"context"
	"fmt"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/util/log"
)

// maxTraversal bounds delegate/principal walks. Delegation graphs are
// tiny; hitting the bound means a cycle crept into the data.
const maxTraversal = 1000

// Resolver answers delegation queries and maintains default delegates.
type Resolver struct {
	store store.Store
}

// NewResolver builds a resolver over the store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Delegates returns every entity delegated to by any of e's states,
// deduplicated, in first-seen order.
func (r *Resolver) Delegates(ctx context.Context, e *model.Entity) ([]*model.Entity, error) {
	states, err := r.store.ListStatesForEntity(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	visited := map[int64]struct{}{}
	var out []*model.Entity
	for _, st := range states {
		edges, err := r.store.ListDelegationsForState(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			if _, seen := visited[edge.DelegateEntityID]; seen {
				continue
			}
			visited[edge.DelegateEntityID] = struct{}{}
			if len(visited) > maxTraversal {
				log.Errorf("delegation traversal for entity %d exceeded %d nodes, truncating", e.ID, maxTraversal)
				return out, nil
			}
			delegate, err := r.store.GetEntity(ctx, edge.DelegateEntityID)
			if err != nil {
				return nil, err
			}
			out = append(out, delegate)
		}
	}
	return out, nil
}

// Principals returns every entity owning a state that delegates to e,
// deduplicated, in first-seen order.
func (r *Resolver) Principals(ctx context.Context, e *model.Entity) ([]*model.Entity, error) {
	edges, err := r.store.ListDelegationsForDelegate(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	visited := map[int64]struct{}{}
	var out []*model.Entity
	for _, edge := range edges {
		st, err := r.store.GetEntityState(ctx, edge.EntityStateID)
		if err != nil {
			return nil, err
		}
		if _, seen := visited[st.EntityID]; seen {
			continue
		}
		visited[st.EntityID] = struct{}{}
		if len(visited) > maxTraversal {
			log.Errorf("principal traversal for entity %d exceeded %d nodes, truncating", e.ID, maxTraversal)
			return out, nil
		}
		principal, err := r.store.GetEntity(ctx, st.EntityID)
		if err != nil {
			return nil, err
		}
		out = append(out, principal)
	}
	return out, nil
}

// EnsureDefaultDelegates gives every state of e whose type sits in the
// default map a delegate, all in one transaction. An existing delegate
// of the target type already attached on e is reused; otherwise one new
// entity is created per target type and every such state wires to it.
// Running it twice changes nothing.
func (r *Resolver) EnsureDefaultDelegates(ctx context.Context, e *model.Entity) error {
	return r.store.RunInTransaction(ctx, func(tx store.Tx) error {
		states, err := tx.ListStatesForEntity(ctx, e.ID)
		if err != nil {
			return err
		}

		// Existing delegates of e by entity type, for reuse.
		existingByType := map[model.EntityType]int64{}
		for _, st := range states {
			edges, err := tx.ListDelegationsForState(ctx, st.ID)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				delegate, err := tx.GetEntity(ctx, edge.DelegateEntityID)
				if err != nil {
					return err
				}
				existingByType[delegate.EntityType] = delegate.ID
			}
		}

		for _, st := range states {
			targetType, wantsDelegate := model.DefaultDelegateTypes[st.StateType]
			if !wantsDelegate {
				continue
			}
			edges, err := tx.ListDelegationsForState(ctx, st.ID)
			if err != nil {
				return err
			}
			if len(edges) > 0 {
				continue
			}

			delegateID, ok := existingByType[targetType]
			if !ok {
				delegate := &model.Entity{
					Name:          fmt.Sprintf("%s - %s", e.Name, targetType.Label()),
					EntityType:    targetType,
					CanUserDelete: true,
				}
				if err := tx.CreateEntity(ctx, delegate); err != nil {
					return err
				}
				delegateID = delegate.ID
				existingByType[targetType] = delegateID
			}
			err = tx.CreateDelegation(ctx, &model.EntityStateDelegation{
				EntityStateID:    st.ID,
				DelegateEntityID: delegateID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveDelegatesFromViewIfOrphaned removes each of e's delegates from
// the view when e is its only principal. The delegate entity itself
// stays; other views may still place it.
func (r *Resolver) RemoveDelegatesFromViewIfOrphaned(ctx context.Context, e *model.Entity, viewID int64) error {
	return r.store.RunInTransaction(ctx, func(tx store.Tx) error {
		states, err := tx.ListStatesForEntity(ctx, e.ID)
		if err != nil {
			return err
		}

		delegateIDs := map[int64]struct{}{}
		for _, st := range states {
			edges, err := tx.ListDelegationsForState(ctx, st.ID)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				delegateIDs[edge.DelegateEntityID] = struct{}{}
			}
		}

		for delegateID := range delegateIDs {
			sole, err := solePrincipal(ctx, tx, delegateID, e.ID)
			if err != nil {
				return err
			}
			if !sole {
				continue
			}
			if err := tx.RemoveEntityFromView(ctx, delegateID, viewID); err != nil {
				return err
			}
			log.Debugf("removed orphaned delegate %d from view %d", delegateID, viewID)
		}
		return nil
	})
}

// solePrincipal reports whether principalID is the only entity whose
// states delegate to delegateID.
func solePrincipal(ctx context.Context, tx store.Tx, delegateID, principalID int64) (bool, error) {
	edges, err := tx.ListDelegationsForDelegate(ctx, delegateID)
	if err != nil {
		return false, err
	}
	for _, edge := range edges {
		st, err := tx.GetEntityState(ctx, edge.EntityStateID)
		if err != nil {
			return false, err
		}
		if st.EntityID != principalID {
			return false, nil
		}
	}
	return len(edges) > 0, nil
}
