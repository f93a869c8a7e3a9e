// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

import "time"

// AttributeType separates sync-owned attributes from user-added ones.
type AttributeType string

// Attribute origins.
const (
	AttributePredefined AttributeType = "predefined"
	AttributeCustom     AttributeType = "custom"
)

// EntityAttribute is a typed name/value pair on an entity. History is
// append-only: the store inserts a new row on every value change and marks
// the previous one superseded.
type EntityAttribute struct {
	ID            int64         `db:"id" json:"id"`
	EntityID      int64         `db:"entity_id" json:"entity_id"`
	Name          string        `db:"name" json:"name"`
	Value         string        `db:"value" json:"value"`
	AttributeType AttributeType `db:"attribute_type" json:"attribute_type"`
	IsEditable    bool          `db:"is_editable" json:"is_editable"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
