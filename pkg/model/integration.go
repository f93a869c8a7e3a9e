// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package model

import (
	"strings"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
)

// IntegrationKey cross-references a local row against an external object.
// It is opaque to the core and stable for the lifetime of the remote object.
type IntegrationKey struct {
	IntegrationID   string `json:"integration_id"`
	IntegrationName string `json:"integration_name"`
}

// IsZero reports whether the key is unset.
func (k IntegrationKey) IsZero() bool {
	return k.IntegrationID == "" && k.IntegrationName == ""
}

// String renders the key as "<id>.<name>". The name part may itself
// contain dots (Home Assistant entity ids do).
func (k IntegrationKey) String() string {
	return k.IntegrationID + "." + k.IntegrationName
}

// ParseIntegrationKey parses the "<id>.<name>" form. The split happens at
// the first dot only.
func ParseIntegrationKey(s string) (IntegrationKey, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return IntegrationKey{}, errors.NewBadInputf("malformed integration key %q", s)
	}
	return IntegrationKey{IntegrationID: parts[0], IntegrationName: parts[1]}, nil
}

// SensorResponse is one reading for one sensor. Values are always strings at
// the bus; their semantics live in the EntityState's type.
type SensorResponse struct {
	Key       IntegrationKey `json:"key"`
	Value     string         `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
	SensorID  int64          `json:"sensor_id,omitempty"`
}

// IntegrationRecord is the persisted on/off row for one integration.
type IntegrationRecord struct {
	IntegrationID string `db:"integration_id" json:"integration_id"`
	Enabled       bool   `db:"enabled" json:"enabled"`
}

// IntegrationAttribute is one persisted configuration value for an integration.
type IntegrationAttribute struct {
	IntegrationID string `db:"integration_id" json:"integration_id"`
	Name          string `db:"name" json:"name"`
	Value         string `db:"value" json:"value"`
	IsRequired    bool   `db:"is_required" json:"is_required"`
	IsSecret      bool   `db:"is_secret" json:"is_secret"`
}
