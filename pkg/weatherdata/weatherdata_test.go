// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weatherdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/interval"
)

func TestWeatherFieldsRoundTrip(t *testing.T) {
	fields := WeatherFields()
	require.Len(t, fields, 14)

	var c WeatherConditions
	for _, f := range fields {
		assert.Nil(t, f.Get(&c), "%s starts nil", f.Name)
	}

	at := time.Now()
	c.Temperature = interval.NewNumeric("nws", at, 72, "degF")
	c.IsDaytime = interval.NewBoolean("nws", at, true)
	c.Description = interval.NewString("nws", at, "clear")

	var cp WeatherConditions
	for _, f := range fields {
		f.Set(&cp, f.Get(&c))
	}
	assert.Equal(t, c, cp)

	for _, f := range fields {
		f.Set(&cp, nil)
	}
	assert.Equal(t, WeatherConditions{}, cp)
}

func TestAstralFieldsRoundTrip(t *testing.T) {
	fields := AstralFields()
	require.Len(t, fields, 5)

	at := time.Now()
	c := AstralConditions{
		Sunrise:         interval.NewTime("sun", at, at.Add(6*time.Hour)),
		DaylightSeconds: interval.NewNumeric("sun", at, 43000, "s"),
		MoonPhase:       interval.NewString("sun", at, "waxing gibbous"),
	}

	var cp AstralConditions
	for _, f := range fields {
		f.Set(&cp, f.Get(&c))
	}
	assert.Equal(t, c, cp)
	assert.Nil(t, cp.Sunset)
}

func TestAggregatorOverWeatherConditions(t *testing.T) {
	t0 := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	agg := interval.New(interval.Config{
		Length:     time.Hour,
		Count:      1,
		Descending: true,
		Now:        func() time.Time { return t0.Add(5 * time.Minute) },
	}, WeatherFields())

	src := interval.Source{ID: "nws", Priority: 1}
	agg.AddData(src, []interval.IntervalData[WeatherConditions]{{
		Interval: interval.TimeInterval{Start: t0, End: t0.Add(time.Hour)},
		Data:     &WeatherConditions{Temperature: interval.NewNumeric("nws", t0, 70, "degF")},
	}})

	out := agg.Intervals()
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Data)
	assert.Equal(t, 70.0, out[0].Data.Temperature.Avg)
	assert.Nil(t, out[0].Data.WindSpeed)
}
