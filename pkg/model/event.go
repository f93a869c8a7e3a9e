// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

// EventDefinition is a wiring hook for alarm-class states created during
// sync. The hub stores the rows; rule evaluation is out of scope.
type EventDefinition struct {
	ID            int64  `db:"id" json:"id"`
	EntityStateID int64  `db:"entity_state_id" json:"entity_state_id"`
	EventType     string `db:"event_type" json:"event_type"`
	Label         string `db:"label" json:"label"`
}
