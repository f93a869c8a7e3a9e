// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package interval

import "time"

// DataPoint is the common surface of every typed reading attached to an
// interval. Implementations carry the source that produced the reading
// and when the source reported it.
type DataPoint interface {
	Source() string
	ReportedAt() time.Time
}

// DataPointBase carries reading provenance and is embedded by every
// variant.
type DataPointBase struct {
	SourceID string    `json:"source_id"`
	SourceAt time.Time `json:"source_at"`
}

// Source returns the ID of the source that produced the reading.
func (b DataPointBase) Source() string { return b.SourceID }

// ReportedAt returns when the source produced the reading.
func (b DataPointBase) ReportedAt() time.Time { return b.SourceAt }

// NumericDataPoint is a measured quantity. Min and Max default to Avg
// when the source only reports a single value.
type NumericDataPoint struct {
	DataPointBase
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Units string  `json:"units,omitempty"`
}

// NewNumeric builds a single-value numeric reading, Min = Avg = Max.
func NewNumeric(sourceID string, at time.Time, value float64, units string) *NumericDataPoint {
	return &NumericDataPoint{
		DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at},
		Min:           value,
		Avg:           value,
		Max:           value,
		Units:         units,
	}
}

// NewNumericRange builds a numeric reading with an explicit spread.
func NewNumericRange(sourceID string, at time.Time, min, avg, max float64, units string) *NumericDataPoint {
	return &NumericDataPoint{
		DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at},
		Min:           min,
		Avg:           avg,
		Max:           max,
		Units:         units,
	}
}

// BooleanDataPoint is an on/off observation.
type BooleanDataPoint struct {
	DataPointBase
	Value bool `json:"value"`
}

// NewBoolean builds a boolean reading.
func NewBoolean(sourceID string, at time.Time, value bool) *BooleanDataPoint {
	return &BooleanDataPoint{DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at}, Value: value}
}

// TimeDataPoint is a point-in-time observation, e.g. a sunrise.
type TimeDataPoint struct {
	DataPointBase
	Value time.Time `json:"value"`
}

// NewTime builds a time reading.
func NewTime(sourceID string, at time.Time, value time.Time) *TimeDataPoint {
	return &TimeDataPoint{DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at}, Value: value}
}

// StringDataPoint is a categorical observation, e.g. a sky description.
type StringDataPoint struct {
	DataPointBase
	Value string `json:"value"`
}

// NewString builds a string reading.
func NewString(sourceID string, at time.Time, value string) *StringDataPoint {
	return &StringDataPoint{DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at}, Value: value}
}

// ListDataPoint is a multi-valued categorical observation.
type ListDataPoint struct {
	DataPointBase
	Values []string `json:"values"`
}

// NewList builds a list reading.
func NewList(sourceID string, at time.Time, values []string) *ListDataPoint {
	return &ListDataPoint{DataPointBase: DataPointBase{SourceID: sourceID, SourceAt: at}, Values: values}
}

// Source identifies an upstream provider feeding an aggregator. Lower
// Priority wins when several fresh sources cover the same interval.
type Source struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Priority int    `json:"priority"`
}

// Less orders sources by priority ascending, then ID ascending.
func (s Source) Less(o Source) bool {
	if s.Priority != o.Priority {
		return s.Priority < o.Priority
	}
	return s.ID < o.ID
}
