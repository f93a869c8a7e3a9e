// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package sensorbus keeps the latest sensor readings in memory: one short
// ring per sensor key, fan-out to subscribers, and TTL'd control overrides.
package sensorbus

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/telemetry"
	"github.com/DataDog/hearth/pkg/util/cache"
	"github.com/DataDog/hearth/pkg/util/log"
)

const (
	// DefaultHistorySize is how many responses each ring keeps. The
	// transition UI needs at least the last two.
	DefaultHistorySize = 5
	minHistorySize     = 2

	// DefaultOverrideTTL is how long a control override masks the polled value.
	DefaultOverrideTTL = 11 * time.Second
	// DefaultOverrideCap bounds the override cache.
	DefaultOverrideCap = 100

	subscriberBuffer = 16
)

// Options tune a Bus. Zero values select the defaults.
type Options struct {
	HistorySize int
	OverrideTTL time.Duration
	OverrideCap int
	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// Bus is the process-wide sensor response store.
type Bus struct {
	mu     sync.RWMutex
	latest map[model.IntegrationKey][]model.SensorResponse // newest first
	index  map[model.IntegrationKey]model.Sensor
	subs   map[chan []model.SensorResponse]string

	overrides *cache.BoundedTTL
	opts      Options
}

// New returns an empty bus.
func New(opts Options) *Bus {
	if opts.HistorySize == 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.HistorySize < minHistorySize {
		opts.HistorySize = minHistorySize
	}
	if opts.OverrideTTL == 0 {
		opts.OverrideTTL = DefaultOverrideTTL
	}
	if opts.OverrideCap == 0 {
		opts.OverrideCap = DefaultOverrideCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bus{
		latest:    map[model.IntegrationKey][]model.SensorResponse{},
		index:     map[model.IntegrationKey]model.Sensor{},
		subs:      map[chan []model.SensorResponse]string{},
		overrides: cache.NewBoundedTTL(opts.OverrideTTL, opts.OverrideCap),
		opts:      opts,
	}
}

// SetSensors replaces the sensor index. The store's reload listener calls
// this after every committed model change.
func (b *Bus) SetSensors(sensors []model.Sensor) {
	index := make(map[model.IntegrationKey]model.Sensor, len(sensors))
	for _, s := range sensors {
		if s.Key().IsZero() {
			continue
		}
		index[s.Key()] = s
	}
	b.mu.Lock()
	b.index = index
	b.mu.Unlock()
}

// UpdateLatest merges a batch of responses, last-write-wins per key by
// timestamp. Accepted responses go to every subscriber; older arrivals are
// discarded so per-key timestamps never go backwards.
func (b *Bus) UpdateLatest(batch map[model.IntegrationKey]model.SensorResponse) {
	if len(batch) == 0 {
		return
	}
	var accepted []model.SensorResponse

	b.mu.Lock()
	for key, resp := range batch {
		resp.Key = key
		if sensor, ok := b.index[key]; ok {
			resp.SensorID = sensor.ID
		}
		ring := b.latest[key]
		if len(ring) > 0 && resp.Timestamp.Before(ring[0].Timestamp) {
			telemetry.SensorDiscards.WithLabelValues().Inc()
			continue
		}
		ring = append([]model.SensorResponse{resp}, ring...)
		if len(ring) > b.opts.HistorySize {
			ring = ring[:b.opts.HistorySize]
		}
		b.latest[key] = ring
		accepted = append(accepted, resp)
		telemetry.SensorUpdates.WithLabelValues().Inc()
	}
	subs := make(map[chan []model.SensorResponse]string, len(b.subs))
	for ch, name := range b.subs {
		subs[ch] = name
	}
	b.mu.Unlock()

	if len(accepted) == 0 {
		return
	}
	for ch, name := range subs {
		select {
		case ch <- accepted:
		default:
			log.Warnf("sensor bus subscriber %q is slow, dropping %d responses", name, len(accepted))
		}
	}
}

// Subscribe registers a listener for accepted responses. Slow listeners
// drop batches rather than block the monitors.
func (b *Bus) Subscribe(name string) <-chan []model.SensorResponse {
	ch := make(chan []model.SensorResponse, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = name
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (b *Bus) Unsubscribe(ch <-chan []model.SensorResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for own := range b.subs {
		if own == ch {
			delete(b.subs, own)
			close(own)
			return
		}
	}
}

// LatestAll returns a snapshot of every known sensor's recent responses,
// most recent first.
func (b *Bus) LatestAll(ctx context.Context) map[model.Sensor][]model.SensorResponse {
	b.mu.RLock()
	sensors := make([]model.Sensor, 0, len(b.index))
	for _, s := range b.index {
		sensors = append(sensors, s)
	}
	b.mu.RUnlock()
	return b.LatestFor(ctx, sensors)
}

// LatestFor returns a snapshot for the given sensors only. A live override
// for a sensor's state substitutes the newest response's value; timestamp
// and source stay untouched.
func (b *Bus) LatestFor(_ context.Context, sensors []model.Sensor) map[model.Sensor][]model.SensorResponse {
	out := make(map[model.Sensor][]model.SensorResponse, len(sensors))
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sensor := range sensors {
		ring, ok := b.latest[sensor.Key()]
		if !ok {
			continue
		}
		cp := make([]model.SensorResponse, len(ring))
		copy(cp, ring)
		if v, ok := b.overrides.Get(overrideKey(sensor.EntityStateID)); ok && len(cp) > 0 {
			cp[0].Value = v.(string)
		}
		out[sensor] = cp
	}
	return out
}

// Override masks the polled value of every sensor reporting stateID until
// the TTL expires, so the UI reflects a just-issued command before the next
// poll lands.
func (b *Bus) Override(stateID int64, value string) {
	b.overrides.Set(overrideKey(stateID), value)
	telemetry.SensorOverrides.WithLabelValues().Inc()
	log.Debugf("installed override for state %d: %q", stateID, value)
}

// ClearOverrides drops every live override. Managers call this on reload.
func (b *Bus) ClearOverrides() {
	b.overrides.Flush()
}

func overrideKey(stateID int64) string {
	return cache.BuildKey("override", strconv.FormatInt(stateID, 10))
}
