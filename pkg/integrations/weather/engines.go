// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package weather merges forecasts, observations and solar data from
// several public providers into rolling interval windows.
package weather

import (
	"time"

	"github.com/DataDog/hearth/pkg/interval"
	"github.com/DataDog/hearth/pkg/weatherdata"
)

// The providers feeding the engines. Lower priority wins when several
// fresh sources cover the same interval.
var (
	SourceNWS       = interval.Source{ID: "nws", Label: "National Weather Service", Priority: 1}
	SourceSun       = interval.Source{ID: "sunrise-sunset", Label: "sunrise-sunset.org", Priority: 2}
	SourceOpenMeteo = interval.Source{ID: "open-meteo", Label: "Open-Meteo", Priority: 3}
)

// Engines holds the five rolling windows the integration maintains.
type Engines struct {
	// Current is the hour in progress, a single interval.
	Current *interval.Aggregator[weatherdata.WeatherConditions]
	// Hourly is the next 24 hours of forecast.
	Hourly *interval.Aggregator[weatherdata.WeatherConditions]
	// Daily is the next 7 household days of forecast.
	Daily *interval.Aggregator[weatherdata.WeatherConditions]
	// History is the last 7 household days, newest first.
	History *interval.Aggregator[weatherdata.WeatherConditions]
	// Astral is today plus two days of sun and moon data.
	Astral *interval.Aggregator[weatherdata.AstralConditions]
}

// NewEngines builds the windows. Daily windows align to midnight in loc;
// now overrides the clock in tests and may be nil.
func NewEngines(loc *time.Location, now func() time.Time) *Engines {
	const day = 24 * time.Hour
	return &Engines{
		Current: interval.New(interval.Config{
			Length: time.Hour, Count: 1, Descending: true, Now: now,
		}, weatherdata.WeatherFields()),
		Hourly: interval.New(interval.Config{
			Length: time.Hour, Count: 24, Now: now,
		}, weatherdata.WeatherFields()),
		Daily: interval.New(interval.Config{
			Length: day, Count: 7, Alignment: interval.AlignLocalMidnight, Location: loc, Now: now,
		}, weatherdata.WeatherFields()),
		History: interval.New(interval.Config{
			Length: day, Count: 7, Descending: true, Alignment: interval.AlignLocalMidnight, Location: loc, Now: now,
		}, weatherdata.WeatherFields()),
		Astral: interval.New(interval.Config{
			Length: day, Count: 3, Alignment: interval.AlignLocalMidnight, Location: loc, Now: now,
		}, weatherdata.AstralFields()),
	}
}
