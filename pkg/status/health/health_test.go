// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeverBeatenIsDead(t *testing.T) {
	r := NewRegistry()
	r.Register("hass-monitor")
	assert.Equal(t, StateDead, r.StateOf("hass-monitor"))
	assert.Equal(t, StateDead, r.StateOf("unregistered"))
}

func TestStalenessThresholds(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Beat("m")
	assert.Equal(t, StateActive, r.StateOf("m"))

	now = now.Add(29 * time.Second)
	assert.Equal(t, StateActive, r.StateOf("m"))

	now = now.Add(2 * time.Second)
	assert.Equal(t, StateStale, r.StateOf("m"))

	now = now.Add(5 * time.Minute)
	assert.Equal(t, StateDead, r.StateOf("m"))
}

func TestSnapshotBuckets(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Register("never")
	r.Beat("fresh")
	r.Beat("old")

	now = now.Add(time.Minute)
	r.Beat("fresh")

	st := r.Snapshot()
	assert.Equal(t, []string{"fresh"}, st.Active)
	assert.Equal(t, []string{"old"}, st.Stale)
	assert.Equal(t, []string{"never"}, st.Dead)
}

func TestDeregister(t *testing.T) {
	r := NewRegistry()
	r.Beat("m")
	r.Deregister("m")
	assert.Equal(t, StateDead, r.StateOf("m"))
	assert.Empty(t, r.Snapshot().Active)
}
