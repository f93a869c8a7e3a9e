// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package interval

import (
	"sync"
	"time"

	"github.com/DataDog/hearth/pkg/util/log"
)

// staleAfter is how old a source's freshest reading may be before the
// best-source selection skips it in favor of a lower-priority source.
const staleAfter = 2 * time.Hour

// Alignment controls where interval boundaries fall.
type Alignment int

const (
	// AlignUTC truncates to the interval length on the UTC clock.
	AlignUTC Alignment = iota
	// AlignLocalMidnight starts day-length intervals at midnight in the
	// configured location, so daily records follow the household's days
	// across DST shifts.
	AlignLocalMidnight
)

// Field describes one aggregated slot of the record type E: how to read
// the slot off a contribution and how to write the merged result back.
type Field[E any] struct {
	Name string
	Get  func(*E) DataPoint
	Set  func(*E, DataPoint)
}

// IntervalData pairs a record with the time range it covers. Used both
// for source submissions and for aggregated snapshots.
type IntervalData[E any] struct {
	Interval TimeInterval `json:"interval"`
	Data     *E           `json:"data"`
}

// Config fixes the shape of an aggregator's rolling window.
type Config struct {
	// Length of each canonical interval.
	Length time.Duration
	// Count of intervals kept in the window.
	Count int
	// Descending orders the window newest-first and extends it into the
	// past (history); ascending extends it into the future (forecasts).
	Descending bool
	// Alignment of interval boundaries.
	Alignment Alignment
	// Location for AlignLocalMidnight. Defaults to UTC.
	Location *time.Location
	// Now overrides the clock in tests.
	Now func() time.Time
}

type contribution[E any] struct {
	source   Source
	interval TimeInterval
	data     *E
}

type aggregate[E any] struct {
	interval      TimeInterval
	contributions []contribution[E]
	result        *E
}

// Aggregator maintains a rolling window of canonical intervals and merges
// per-source submissions into one record per interval. All methods are
// safe for concurrent use.
type Aggregator[E any] struct {
	mu         sync.Mutex
	cfg        Config
	fields     []Field[E]
	aggregates []*aggregate[E]
}

// New builds an aggregator over the given field accessors. The window is
// materialized lazily on first use.
func New[E any](cfg Config, fields []Field[E]) *Aggregator[E] {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Length <= 0 || cfg.Count <= 0 {
		log.Errorf("interval aggregator misconfigured: length=%s count=%d", cfg.Length, cfg.Count)
	}
	return &Aggregator[E]{cfg: cfg, fields: fields}
}

// EnsureInitialized materializes the window. Idempotent; AddData and
// Intervals call it implicitly.
func (a *Aggregator[E]) EnsureInitialized() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollLocked()
}

// AddData replaces the source's contributions on every interval its items
// overlap and re-aggregates the touched intervals. Items with nil data or
// an inverted range are dropped.
func (a *Aggregator[E]) AddData(source Source, items []IntervalData[E]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollLocked()

	touched := make(map[*aggregate[E]]struct{})
	for _, agg := range a.aggregates {
		overlapsAny := false
		for _, item := range items {
			if item.Interval.Valid() && agg.interval.Overlaps(item.Interval) {
				overlapsAny = true
				break
			}
		}
		if !overlapsAny {
			continue
		}
		kept := agg.contributions[:0]
		for _, c := range agg.contributions {
			if c.source.ID != source.ID {
				kept = append(kept, c)
			}
		}
		agg.contributions = kept
		touched[agg] = struct{}{}
	}

	for _, item := range items {
		if item.Data == nil || !item.Interval.Valid() {
			continue
		}
		for _, agg := range a.aggregates {
			if agg.interval.Overlaps(item.Interval) {
				agg.contributions = append(agg.contributions, contribution[E]{
					source:   source,
					interval: item.Interval,
					data:     item.Data,
				})
				touched[agg] = struct{}{}
			}
		}
	}

	for agg := range touched {
		a.reaggregate(agg)
	}
}

// Intervals returns a snapshot of the window in its configured order.
// Intervals with no contributions yet carry nil data.
func (a *Aggregator[E]) Intervals() []IntervalData[E] {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollLocked()

	out := make([]IntervalData[E], 0, len(a.aggregates))
	for _, agg := range a.aggregates {
		var cp *E
		if agg.result != nil {
			cp = new(E)
			for _, f := range a.fields {
				f.Set(cp, f.Get(agg.result))
			}
		}
		out = append(out, IntervalData[E]{Interval: agg.interval, Data: cp})
	}
	return out
}

// rollLocked recomputes the canonical window for the current clock,
// preserving contributions already recorded for intervals that survive
// the roll.
func (a *Aggregator[E]) rollLocked() {
	now := a.cfg.Now()
	existing := make(map[time.Time]*aggregate[E], len(a.aggregates))
	for _, agg := range a.aggregates {
		existing[agg.interval.Start] = agg
	}

	next := make([]*aggregate[E], 0, a.cfg.Count)
	for i := 0; i < a.cfg.Count; i++ {
		step := i
		if a.cfg.Descending {
			step = -i
		}
		iv := a.intervalAt(now, step)
		if agg, ok := existing[iv.Start]; ok {
			next = append(next, agg)
		} else {
			next = append(next, &aggregate[E]{interval: iv})
		}
	}
	a.aggregates = next
}

// intervalAt returns the canonical interval `step` intervals away from
// the one containing now. Negative steps walk into the past.
func (a *Aggregator[E]) intervalAt(now time.Time, step int) TimeInterval {
	if a.cfg.Alignment == AlignLocalMidnight {
		local := now.In(a.cfg.Location)
		start := time.Date(local.Year(), local.Month(), local.Day()+step, 0, 0, 0, 0, a.cfg.Location)
		end := time.Date(local.Year(), local.Month(), local.Day()+step+1, 0, 0, 0, 0, a.cfg.Location)
		return TimeInterval{Start: start.UTC(), End: end.UTC()}
	}
	start := now.UTC().Truncate(a.cfg.Length).Add(time.Duration(step) * a.cfg.Length)
	return TimeInterval{Start: start, End: start.Add(a.cfg.Length)}
}

// reaggregate rebuilds the merged record of one interval from its current
// contributions, field by field.
func (a *Aggregator[E]) reaggregate(agg *aggregate[E]) {
	if len(agg.contributions) == 0 {
		agg.result = nil
		return
	}
	now := a.cfg.Now()
	result := new(E)
	for _, f := range a.fields {
		var triples []contribution[E]
		for _, c := range agg.contributions {
			if f.Get(c.data) != nil {
				triples = append(triples, c)
			}
		}
		f.Set(result, a.mergeField(f, agg.interval, triples, now))
	}
	agg.result = result
}

// mergeField picks the best source for one field and collapses that
// source's readings into a single data point.
func (a *Aggregator[E]) mergeField(f Field[E], iv TimeInterval, triples []contribution[E], now time.Time) DataPoint {
	if len(triples) == 0 {
		return nil
	}
	if len(triples) == 1 {
		return f.Get(triples[0].data)
	}

	// Freshest reading per source decides staleness and tie-breaking.
	freshest := make(map[string]time.Time)
	bySource := make(map[string]Source)
	for _, c := range triples {
		at := f.Get(c.data).ReportedAt()
		if cur, ok := freshest[c.source.ID]; !ok || at.After(cur) {
			freshest[c.source.ID] = at
		}
		bySource[c.source.ID] = c.source
	}

	var chosen Source
	var havePick bool
	for id, src := range bySource {
		if now.Sub(freshest[id]) > staleAfter {
			continue
		}
		if !havePick || src.Less(chosen) {
			chosen = src
			havePick = true
		}
	}
	if !havePick {
		// Every source is stale; fall back to whichever reported last.
		var latest time.Time
		for id, src := range bySource {
			if at := freshest[id]; !havePick || at.After(latest) || (at.Equal(latest) && src.Less(chosen)) {
				chosen = src
				latest = at
				havePick = true
			}
		}
	}

	var picked []contribution[E]
	for _, c := range triples {
		if c.source.ID == chosen.ID {
			picked = append(picked, c)
		}
	}
	if len(picked) == 1 {
		return f.Get(picked[0].data)
	}
	return a.collapse(f, iv, chosen, picked, freshest[chosen.ID])
}

// collapse merges several readings from one source into a single data
// point covering the canonical interval.
func (a *Aggregator[E]) collapse(f Field[E], iv TimeInterval, src Source, picked []contribution[E], at time.Time) DataPoint {
	base := DataPointBase{SourceID: src.ID, SourceAt: at}
	switch f.Get(picked[0].data).(type) {
	case *NumericDataPoint:
		var weightSum, avgSum float64
		var min, max float64
		var units string
		first := true
		for _, c := range picked {
			dp, ok := f.Get(c.data).(*NumericDataPoint)
			if !ok {
				continue
			}
			w := iv.OverlapSeconds(c.interval)
			if w <= 0 {
				continue
			}
			weightSum += w
			avgSum += dp.Avg * w
			if first || dp.Min < min {
				min = dp.Min
			}
			if first || dp.Max > max {
				max = dp.Max
			}
			if units == "" {
				units = dp.Units
			}
			first = false
		}
		if weightSum == 0 {
			return f.Get(picked[0].data)
		}
		return &NumericDataPoint{DataPointBase: base, Min: min, Avg: avgSum / weightSum, Max: max, Units: units}
	case *BooleanDataPoint:
		var trueSecs, falseSecs float64
		for _, c := range picked {
			dp, ok := f.Get(c.data).(*BooleanDataPoint)
			if !ok {
				continue
			}
			w := iv.OverlapSeconds(c.interval)
			if dp.Value {
				trueSecs += w
			} else {
				falseSecs += w
			}
		}
		// Ties resolve to false.
		return &BooleanDataPoint{DataPointBase: base, Value: trueSecs > falseSecs}
	default:
		// Time, string and list readings are not averageable; the reading
		// covering the most of the interval wins.
		best := picked[0]
		bestOverlap := iv.OverlapSeconds(best.interval)
		for _, c := range picked[1:] {
			if o := iv.OverlapSeconds(c.interval); o > bestOverlap {
				best, bestOverlap = c, o
			}
		}
		return f.Get(best.data)
	}
}
