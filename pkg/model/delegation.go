// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

// EntityStateDelegation is a directed edge from a principal EntityState to a
// delegate Entity: the delegate visually represents that state. The pair
// (entity_state_id, delegate_entity_id) is unique.
type EntityStateDelegation struct {
	ID               int64 `db:"id" json:"id"`
	EntityStateID    int64 `db:"entity_state_id" json:"entity_state_id"`
	DelegateEntityID int64 `db:"delegate_entity_id" json:"delegate_entity_id"`
}

// DefaultDelegateTypes maps state types that get an auto-created delegate
// when their entity first enters a view, to the delegate's entity type.
var DefaultDelegateTypes = map[EntityStateType]EntityType{
	StateTypeMovement:    EntityTypeArea,
	StateTypePresence:    EntityTypeArea,
	StateTypeSoundLevel:  EntityTypeArea,
	StateTypeVideoStream: EntityTypeArea,
}
