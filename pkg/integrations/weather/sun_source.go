// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"time"

	"github.com/DataDog/hearth/pkg/integrations/weather/sunapi"
	"github.com/DataDog/hearth/pkg/interval"
	"github.com/DataDog/hearth/pkg/weatherdata"
)

// astralDays matches the astral window size: today plus two.
const astralDays = 3

// sunConditions translates one day's solar events, attaching the locally
// computed moon phase for the day's noon.
func sunConditions(day *sunapi.Day, noon time.Time, at time.Time) *weatherdata.AstralConditions {
	return &weatherdata.AstralConditions{
		Sunrise:         interval.NewTime(SourceSun.ID, at, day.Sunrise),
		Sunset:          interval.NewTime(SourceSun.ID, at, day.Sunset),
		SolarNoon:       interval.NewTime(SourceSun.ID, at, day.SolarNoon),
		DaylightSeconds: interval.NewNumeric(SourceSun.ID, at, day.DayLengthSeconds, "s"),
		MoonPhase:       interval.NewString(SourceSun.ID, at, moonPhase(noon)),
	}
}

// fetchSun looks up each day of the astral window and submits them in
// one batch.
func fetchSun(ctx context.Context, c *clients, e *Engines, loc *time.Location, now func() time.Time) error {
	local := now().In(loc)
	items := make([]interval.IntervalData[weatherdata.AstralConditions], 0, astralDays)
	for i := 0; i < astralDays; i++ {
		start := time.Date(local.Year(), local.Month(), local.Day()+i, 0, 0, 0, 0, loc)
		end := time.Date(local.Year(), local.Month(), local.Day()+i+1, 0, 0, 0, 0, loc)
		noon := start.Add(end.Sub(start) / 2)

		day, err := c.sun.Lookup(ctx, c.lat, c.lon, start)
		if err != nil {
			return err
		}
		items = append(items, interval.IntervalData[weatherdata.AstralConditions]{
			Interval: interval.TimeInterval{Start: start.UTC(), End: end.UTC()},
			Data:     sunConditions(day, noon, now()),
		})
	}
	e.Astral.AddData(SourceSun, items)
	return nil
}
