// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/DataDog/hearth/pkg/integrations/weather/nws"
	"github.com/DataDog/hearth/pkg/interval"
	"github.com/DataDog/hearth/pkg/weatherdata"
)

var compassDegrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// parseWindSpeed handles the "10 mph" and "5 to 10 mph" forms NWS
// emits, keeping the upper bound of a range.
func parseWindSpeed(s string) (speed float64, units string, ok bool) {
	fields := strings.Fields(s)
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if v > speed || !ok {
				speed = v
			}
			ok = true
		}
	}
	if !ok || len(fields) == 0 {
		return 0, "", false
	}
	last := fields[len(fields)-1]
	if _, err := strconv.ParseFloat(last, 64); err != nil {
		units = last
	}
	return speed, units, true
}

func nwsTemperatureUnits(u string) string {
	switch u {
	case "F":
		return "degF"
	case "C":
		return "degC"
	default:
		return u
	}
}

// nwsConditions translates one forecast period. at is the fetch time:
// forecast readings are "reported" when the forecast was pulled, not
// when the period they describe occurs.
func nwsConditions(p nws.Period, at time.Time) *weatherdata.WeatherConditions {
	c := &weatherdata.WeatherConditions{
		Temperature: interval.NewNumeric(SourceNWS.ID, at, p.Temperature, nwsTemperatureUnits(p.TemperatureUnit)),
		IsDaytime:   interval.NewBoolean(SourceNWS.ID, at, p.IsDaytime),
	}
	if p.ShortForecast != "" {
		c.Description = interval.NewString(SourceNWS.ID, at, p.ShortForecast)
	}
	if v := p.RelativeHumidity.Value; v != nil {
		c.RelativeHumidity = interval.NewNumeric(SourceNWS.ID, at, *v, "%")
	}
	if v := p.ProbabilityOfPrecipitation.Value; v != nil {
		c.PrecipitationProbability = interval.NewNumeric(SourceNWS.ID, at, *v, "%")
	}
	if v := p.Dewpoint.Value; v != nil {
		c.DewPoint = interval.NewNumeric(SourceNWS.ID, at, *v, strings.TrimPrefix(p.Dewpoint.UnitCode, "wmoUnit:"))
	}
	if speed, units, ok := parseWindSpeed(p.WindSpeed); ok {
		c.WindSpeed = interval.NewNumeric(SourceNWS.ID, at, speed, units)
	}
	if deg, ok := compassDegrees[p.WindDirection]; ok {
		c.WindDirection = interval.NewNumeric(SourceNWS.ID, at, deg, "deg")
	}
	return c
}

// nwsItems translates a period list into engine submissions.
func nwsItems(periods []nws.Period, at time.Time) []interval.IntervalData[weatherdata.WeatherConditions] {
	out := make([]interval.IntervalData[weatherdata.WeatherConditions], 0, len(periods))
	for _, p := range periods {
		iv, err := interval.NewTimeInterval(p.StartTime, p.EndTime)
		if err != nil {
			continue
		}
		out = append(out, interval.IntervalData[weatherdata.WeatherConditions]{
			Interval: iv,
			Data:     nwsConditions(p, at),
		})
	}
	return out
}

// fetchNWS pulls the hourly and daily forecasts and feeds the current,
// hourly and daily windows.
func fetchNWS(ctx context.Context, c *clients, e *Engines, now func() time.Time) error {
	grid, err := c.gridPoints(ctx)
	if err != nil {
		return err
	}
	hourly, err := c.nws.Forecast(ctx, grid.ForecastHourlyURL)
	if err != nil {
		return err
	}
	daily, err := c.nws.Forecast(ctx, grid.ForecastURL)
	if err != nil {
		return err
	}

	at := now()
	hourlyItems := nwsItems(hourly, at)
	e.Current.AddData(SourceNWS, hourlyItems)
	e.Hourly.AddData(SourceNWS, hourlyItems)
	e.Daily.AddData(SourceNWS, nwsItems(daily, at))
	return nil
}
