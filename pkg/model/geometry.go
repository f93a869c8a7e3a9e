// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

// EntityPosition places an entity at a point on one location's floorplan.
type EntityPosition struct {
	EntityID   int64   `db:"entity_id" json:"entity_id"`
	LocationID int64   `db:"location_id" json:"location_id"`
	X          float64 `db:"x" json:"x"`
	Y          float64 `db:"y" json:"y"`
	Scale      float64 `db:"scale" json:"scale"`
	Rotation   float64 `db:"rotation" json:"rotation"`
}

// EntityPath draws an entity as an SVG path on one location's floorplan.
type EntityPath struct {
	EntityID   int64  `db:"entity_id" json:"entity_id"`
	LocationID int64  `db:"location_id" json:"location_id"`
	SVGPath    string `db:"svg_path" json:"svg_path"`
}

// EntityView is an entity's membership in a location view.
type EntityView struct {
	EntityID int64 `db:"entity_id" json:"entity_id"`
	ViewID   int64 `db:"view_id" json:"view_id"`
}

// Collection is a user-curated group of entities.
type Collection struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CollectionEntity is an entity's membership in a collection.
type CollectionEntity struct {
	CollectionID int64 `db:"collection_id" json:"collection_id"`
	EntityID     int64 `db:"entity_id" json:"entity_id"`
}
