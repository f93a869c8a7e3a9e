// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	temp *NumericDataPoint
	wet  *BooleanDataPoint
	desc *StringDataPoint
}

func sampleFields() []Field[sample] {
	return []Field[sample]{
		{
			Name: "temp",
			Get: func(s *sample) DataPoint {
				if s.temp == nil {
					return nil
				}
				return s.temp
			},
			Set: func(s *sample, dp DataPoint) {
				if dp == nil {
					s.temp = nil
					return
				}
				s.temp = dp.(*NumericDataPoint)
			},
		},
		{
			Name: "wet",
			Get: func(s *sample) DataPoint {
				if s.wet == nil {
					return nil
				}
				return s.wet
			},
			Set: func(s *sample, dp DataPoint) {
				if dp == nil {
					s.wet = nil
					return
				}
				s.wet = dp.(*BooleanDataPoint)
			},
		},
		{
			Name: "desc",
			Get: func(s *sample) DataPoint {
				if s.desc == nil {
					return nil
				}
				return s.desc
			},
			Set: func(s *sample, dp DataPoint) {
				if dp == nil {
					s.desc = nil
					return
				}
				s.desc = dp.(*StringDataPoint)
			},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var t0 = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func hourly(now time.Time, count int, desc bool) *Aggregator[sample] {
	return New(Config{
		Length:     time.Hour,
		Count:      count,
		Descending: desc,
		Now:        fixedClock(now),
	}, sampleFields())
}

func iv(start time.Time, d time.Duration) TimeInterval {
	return TimeInterval{Start: start, End: start.Add(d)}
}

func TestTimeIntervalBasics(t *testing.T) {
	a := iv(t0, time.Hour)
	b := iv(t0.Add(30*time.Minute), time.Hour)

	assert.True(t, a.Overlaps(b))
	assert.Equal(t, 1800.0, a.OverlapSeconds(b))
	assert.False(t, a.Overlaps(iv(t0.Add(time.Hour), time.Hour)), "half-open ranges do not touch")
	assert.True(t, a.Contains(t0))
	assert.False(t, a.Contains(t0.Add(time.Hour)))

	_, err := NewTimeInterval(t0, t0)
	assert.Error(t, err)
}

func TestNumericTimeWeightedMean(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}

	agg.AddData(src, []IntervalData[sample]{
		{Interval: iv(t0, 30 * time.Minute), Data: &sample{temp: NewNumeric("a", t0, 10, "degF")}},
		{Interval: iv(t0.Add(30*time.Minute), 30 * time.Minute), Data: &sample{temp: NewNumeric("a", t0, 20, "degF")}},
	})

	out := agg.Intervals()
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Data)
	require.NotNil(t, out[0].Data.temp)
	assert.InDelta(t, 15.0, out[0].Data.temp.Avg, 1e-9)
	assert.Equal(t, 10.0, out[0].Data.temp.Min)
	assert.Equal(t, 20.0, out[0].Data.temp.Max)
	assert.Equal(t, "degF", out[0].Data.temp.Units)
}

func TestBooleanMajorityTieIsFalse(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}

	agg.AddData(src, []IntervalData[sample]{
		{Interval: iv(t0, 30 * time.Minute), Data: &sample{wet: NewBoolean("a", t0, true)}},
		{Interval: iv(t0.Add(30*time.Minute), 30 * time.Minute), Data: &sample{wet: NewBoolean("a", t0, false)}},
	})

	out := agg.Intervals()
	require.NotNil(t, out[0].Data.wet)
	assert.False(t, out[0].Data.wet.Value, "exact tie resolves to false")

	agg.AddData(src, []IntervalData[sample]{
		{Interval: iv(t0, 40 * time.Minute), Data: &sample{wet: NewBoolean("a", t0, true)}},
		{Interval: iv(t0.Add(40*time.Minute), 20 * time.Minute), Data: &sample{wet: NewBoolean("a", t0, false)}},
	})
	out = agg.Intervals()
	assert.True(t, out[0].Data.wet.Value, "longer true span wins")
}

func TestBestSourcePriorityAndStaleness(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	agg := hourly(now, 1, true)
	primary := Source{ID: "nws", Priority: 1}
	backup := Source{ID: "meteo", Priority: 3}

	full := iv(t0, time.Hour)

	// Both fresh: priority 1 wins.
	agg.AddData(primary, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("nws", now, 50, "degF")}}})
	agg.AddData(backup, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("meteo", now, 60, "degF")}}})
	out := agg.Intervals()
	assert.Equal(t, 50.0, out[0].Data.temp.Avg)
	assert.Equal(t, "nws", out[0].Data.temp.Source())

	// Primary goes stale (>2h old reading): backup takes over.
	agg.AddData(primary, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("nws", now.Add(-3*time.Hour), 50, "degF")}}})
	out = agg.Intervals()
	assert.Equal(t, 60.0, out[0].Data.temp.Avg)
	assert.Equal(t, "meteo", out[0].Data.temp.Source())

	// Everything stale: the freshest stale reading wins.
	agg.AddData(backup, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("meteo", now.Add(-4*time.Hour), 60, "degF")}}})
	out = agg.Intervals()
	assert.Equal(t, 50.0, out[0].Data.temp.Avg, "nws reading is stale but newer than meteo's")
}

func TestResubmissionReplacesSourceContributions(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}
	full := iv(t0, time.Hour)

	agg.AddData(src, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("a", t0, 10, "")}}})
	agg.AddData(src, []IntervalData[sample]{{Interval: full, Data: &sample{temp: NewNumeric("a", t0, 30, "")}}})

	out := agg.Intervals()
	assert.Equal(t, 30.0, out[0].Data.temp.Avg, "second submission replaces the first")
}

func TestSingleReadingPassesThroughVerbatim(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}
	dp := NewNumericRange("a", t0, 1, 2, 9, "mph")

	agg.AddData(src, []IntervalData[sample]{{Interval: iv(t0, 10 * time.Minute), Data: &sample{temp: dp}}})

	out := agg.Intervals()
	assert.Equal(t, dp, out[0].Data.temp)
	assert.Nil(t, out[0].Data.wet, "untouched fields stay nil")
}

func TestStringLongestOverlapWins(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}

	agg.AddData(src, []IntervalData[sample]{
		{Interval: iv(t0, 45 * time.Minute), Data: &sample{desc: NewString("a", t0, "cloudy")}},
		{Interval: iv(t0.Add(45*time.Minute), 15 * time.Minute), Data: &sample{desc: NewString("a", t0, "clear")}},
	})

	out := agg.Intervals()
	assert.Equal(t, "cloudy", out[0].Data.desc.Value)
}

func TestAscendingWindowCoversFuture(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	agg := hourly(now, 3, false)

	out := agg.Intervals()
	require.Len(t, out, 3)
	assert.Equal(t, t0, out[0].Interval.Start)
	assert.Equal(t, t0.Add(time.Hour), out[1].Interval.Start)
	assert.Equal(t, t0.Add(2*time.Hour), out[2].Interval.Start)
	for _, o := range out {
		assert.Nil(t, o.Data, "empty window carries nil records")
	}
}

func TestWindowRollPreservesLiveIntervals(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	agg := New(Config{Length: time.Hour, Count: 2, Descending: true, Now: func() time.Time { return now }}, sampleFields())
	src := Source{ID: "a", Priority: 1}

	agg.AddData(src, []IntervalData[sample]{
		{Interval: iv(t0, time.Hour), Data: &sample{temp: NewNumeric("a", now, 10, "")}},
	})

	// One hour later the 10:00 interval is still in the window, one slot back.
	now = now.Add(time.Hour)
	out := agg.Intervals()
	require.Len(t, out, 2)
	assert.Equal(t, t0.Add(time.Hour), out[0].Interval.Start)
	assert.Nil(t, out[0].Data)
	assert.Equal(t, t0, out[1].Interval.Start)
	require.NotNil(t, out[1].Data)
	assert.Equal(t, 10.0, out[1].Data.temp.Avg)

	// Another roll pushes it out entirely.
	now = now.Add(time.Hour)
	out = agg.Intervals()
	assert.Equal(t, t0.Add(2*time.Hour), out[0].Interval.Start)
	assert.Nil(t, out[1].Data)
}

func TestLocalMidnightAlignment(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 01:30 UTC on Mar 11 is still Mar 10 in New York.
	now := time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC)
	agg := New(Config{
		Length:    24 * time.Hour,
		Count:     2,
		Alignment: AlignLocalMidnight,
		Location:  loc,
		Now:       fixedClock(now),
	}, sampleFields())

	out := agg.Intervals()
	require.Len(t, out, 2)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc).UTC(), out[0].Interval.Start)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc).UTC(), out[0].Interval.End)
	// Mar 8 2026 is the US DST jump; days remain midnight-to-midnight locally.
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, loc).UTC(), out[1].Interval.End)
}

func TestDroppedItems(t *testing.T) {
	agg := hourly(t0.Add(10*time.Minute), 1, true)
	src := Source{ID: "a", Priority: 1}

	agg.AddData(src, []IntervalData[sample]{
		{Interval: TimeInterval{Start: t0, End: t0}, Data: &sample{temp: NewNumeric("a", t0, 1, "")}},
		{Interval: iv(t0, time.Hour), Data: nil},
	})

	out := agg.Intervals()
	assert.Nil(t, out[0].Data)
}

func TestSourceOrdering(t *testing.T) {
	a := Source{ID: "b", Priority: 1}
	b := Source{ID: "a", Priority: 2}
	c := Source{ID: "a", Priority: 1}

	assert.True(t, a.Less(b), "priority beats ID")
	assert.True(t, c.Less(a), "ID breaks priority ties")
}
