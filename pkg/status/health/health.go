// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package health tracks liveness heartbeats for the hub's long-running
// tasks. Each monitor beats after a successful work cycle; staleness of the
// beat feeds into the monitor's overall status.
package health

import (
	"sort"
	"sync"
	"time"
)

// Staleness thresholds.
const (
	// ActiveThreshold is the max beat age for an ACTIVE heartbeat.
	ActiveThreshold = 30 * time.Second
	// StaleThreshold is the max beat age before a heartbeat counts as DEAD.
	StaleThreshold = 5 * time.Minute
)

// State classifies a heartbeat's age.
type State string

// Heartbeat states.
const (
	StateActive State = "ACTIVE"
	StateStale  State = "STALE"
	StateDead   State = "DEAD"
)

// Status is a snapshot of every registered heartbeat.
type Status struct {
	Active []string
	Stale  []string
	Dead   []string
}

type beat struct {
	name   string
	latest time.Time
	seen   bool
}

// Registry tracks heartbeats by name.
type Registry struct {
	mu    sync.RWMutex
	beats map[string]*beat
	now   func() time.Time
}

// NewRegistry returns an empty heartbeat registry.
func NewRegistry() *Registry {
	return &Registry{beats: map[string]*beat{}, now: time.Now}
}

// Register adds a named heartbeat. Until the first Beat it reads DEAD.
func (r *Registry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.beats[name]; !ok {
		r.beats[name] = &beat{name: name}
	}
}

// Deregister removes a heartbeat, for monitors that have been cleaned up.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.beats, name)
}

// Beat records one heartbeat. Unregistered names are registered on the fly.
func (r *Registry) Beat(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.beats[name]
	if !ok {
		b = &beat{name: name}
		r.beats[name] = b
	}
	b.latest = r.now()
	b.seen = true
}

// StateOf classifies one heartbeat. Unknown or never-beaten names are DEAD.
func (r *Registry) StateOf(name string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.beats[name]
	if !ok || !b.seen {
		return StateDead
	}
	return Classify(r.now().Sub(b.latest))
}

// Snapshot returns every heartbeat bucketed by state, names sorted.
func (r *Registry) Snapshot() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st Status
	for name, b := range r.beats {
		if !b.seen {
			st.Dead = append(st.Dead, name)
			continue
		}
		switch Classify(r.now().Sub(b.latest)) {
		case StateActive:
			st.Active = append(st.Active, name)
		case StateStale:
			st.Stale = append(st.Stale, name)
		default:
			st.Dead = append(st.Dead, name)
		}
	}
	sort.Strings(st.Active)
	sort.Strings(st.Stale)
	sort.Strings(st.Dead)
	return st
}

// Classify maps a heartbeat age to its staleness state.
func Classify(age time.Duration) State {
	switch {
	case age < ActiveThreshold:
		return StateActive
	case age < StaleThreshold:
		return StateStale
	default:
		return StateDead
	}
}
