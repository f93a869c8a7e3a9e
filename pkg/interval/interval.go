// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package interval merges overlapping readings from prioritized sources
// into canonical fixed-length time intervals, with type-specific
// aggregation per data point variant.
package interval

import (
	"fmt"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
)

// TimeInterval is a half-open [Start, End) UTC range.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval validates Start < End and normalizes to UTC.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	t := TimeInterval{Start: start.UTC(), End: end.UTC()}
	if !t.Valid() {
		return TimeInterval{}, errors.NewBadInputf("interval start %s is not before end %s", start, end)
	}
	return t, nil
}

// Valid reports Start < End.
func (t TimeInterval) Valid() bool {
	return t.Start.Before(t.End)
}

// Duration returns End - Start.
func (t TimeInterval) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Contains reports whether ts falls inside the half-open range.
func (t TimeInterval) Contains(ts time.Time) bool {
	return !ts.Before(t.Start) && ts.Before(t.End)
}

// Overlaps reports whether the two half-open ranges intersect.
func (t TimeInterval) Overlaps(o TimeInterval) bool {
	return t.Start.Before(o.End) && o.Start.Before(t.End)
}

// OverlapSeconds returns the length of the intersection in seconds, zero
// when disjoint.
func (t TimeInterval) OverlapSeconds(o TimeInterval) float64 {
	start := t.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := t.End
	if o.End.Before(end) {
		end = o.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Seconds()
}

func (t TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s)", t.Start.Format(time.RFC3339), t.End.Format(time.RFC3339))
}
