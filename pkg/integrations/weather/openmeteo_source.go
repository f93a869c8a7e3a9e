// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"context"
	"time"

	"github.com/DataDog/hearth/pkg/integrations/weather/openmeteo"
	"github.com/DataDog/hearth/pkg/interval"
	"github.com/DataDog/hearth/pkg/weatherdata"
)

// pastDays and forecastDays fix how much of the Open-Meteo series to
// request; they match the history and daily window sizes.
const (
	meteoPastDays     = 7
	meteoForecastDays = 7
)

func meteoUnits(units map[string]string, variable, fallback string) string {
	if u, ok := units[variable]; ok && u != "" {
		return u
	}
	return fallback
}

// meteoHourlyItems translates the hourly parallel arrays. Rows with an
// unparsable timestamp are skipped; value arrays shorter than the time
// array contribute nothing for the missing rows.
func meteoHourlyItems(f *openmeteo.Forecast, at time.Time) []interval.IntervalData[weatherdata.WeatherConditions] {
	h := f.Hourly
	num := func(vals []float64, i int, variable, fallbackUnits string) *interval.NumericDataPoint {
		if i >= len(vals) {
			return nil
		}
		return interval.NewNumeric(SourceOpenMeteo.ID, at, vals[i], meteoUnits(f.HourlyUnits, variable, fallbackUnits))
	}

	out := make([]interval.IntervalData[weatherdata.WeatherConditions], 0, len(h.Time))
	for i, raw := range h.Time {
		start, err := openmeteo.ParseHourlyTime(raw)
		if err != nil {
			continue
		}
		iv := interval.TimeInterval{Start: start, End: start.Add(time.Hour)}
		c := &weatherdata.WeatherConditions{
			Temperature:              num(h.Temperature, i, "temperature_2m", "°C"),
			ApparentTemperature:      num(h.ApparentTemperature, i, "apparent_temperature", "°C"),
			DewPoint:                 num(h.DewPoint, i, "dew_point_2m", "°C"),
			RelativeHumidity:         num(h.RelativeHumidity, i, "relative_humidity_2m", "%"),
			BarometricPressure:       num(h.SurfacePressure, i, "surface_pressure", "hPa"),
			WindSpeed:                num(h.WindSpeed, i, "wind_speed_10m", "km/h"),
			WindGust:                 num(h.WindGusts, i, "wind_gusts_10m", "km/h"),
			WindDirection:            num(h.WindDirection, i, "wind_direction_10m", "deg"),
			CloudCover:               num(h.CloudCover, i, "cloud_cover", "%"),
			Visibility:               num(h.Visibility, i, "visibility", "m"),
			Precipitation:            num(h.Precipitation, i, "precipitation", "mm"),
			PrecipitationProbability: num(h.PrecipitationProbability, i, "precipitation_probability", "%"),
		}
		if i < len(h.IsDay) {
			c.IsDaytime = interval.NewBoolean(SourceOpenMeteo.ID, at, h.IsDay[i] == 1)
		}
		if i < len(h.WeatherCode) {
			c.Description = interval.NewString(SourceOpenMeteo.ID, at, openmeteo.DescribeWeatherCode(h.WeatherCode[i]))
		}
		out = append(out, interval.IntervalData[weatherdata.WeatherConditions]{Interval: iv, Data: c})
	}
	return out
}

// meteoDailyItems translates the daily parallel arrays. Temperature
// carries the reported min/max spread with the midpoint as the average.
func meteoDailyItems(f *openmeteo.Forecast, at time.Time) []interval.IntervalData[weatherdata.WeatherConditions] {
	d := f.Daily
	out := make([]interval.IntervalData[weatherdata.WeatherConditions], 0, len(d.Time))
	for i, raw := range d.Time {
		start, err := openmeteo.ParseDailyTime(raw)
		if err != nil {
			continue
		}
		iv := interval.TimeInterval{Start: start, End: start.Add(24 * time.Hour)}
		c := &weatherdata.WeatherConditions{}
		if i < len(d.TemperatureMin) && i < len(d.TemperatureMax) {
			min, max := d.TemperatureMin[i], d.TemperatureMax[i]
			c.Temperature = interval.NewNumericRange(SourceOpenMeteo.ID, at, min, (min+max)/2, max, "°C")
		}
		if i < len(d.PrecipitationSum) {
			c.Precipitation = interval.NewNumeric(SourceOpenMeteo.ID, at, d.PrecipitationSum[i], "mm")
		}
		if i < len(d.PrecipitationProbabilityMax) {
			c.PrecipitationProbability = interval.NewNumeric(SourceOpenMeteo.ID, at, d.PrecipitationProbabilityMax[i], "%")
		}
		if i < len(d.WindSpeedMax) {
			c.WindSpeed = interval.NewNumeric(SourceOpenMeteo.ID, at, d.WindSpeedMax[i], "km/h")
		}
		if i < len(d.WeatherCode) {
			c.Description = interval.NewString(SourceOpenMeteo.ID, at, openmeteo.DescribeWeatherCode(d.WeatherCode[i]))
		}
		out = append(out, interval.IntervalData[weatherdata.WeatherConditions]{Interval: iv, Data: c})
	}
	return out
}

// fetchOpenMeteo pulls one combined forecast covering the past and
// coming week and feeds every weather window. Past hourly rows land in
// history's daily intervals through overlap; future rows fill the
// forecast windows.
func fetchOpenMeteo(ctx context.Context, c *clients, e *Engines, now func() time.Time) error {
	f, err := c.meteo.Forecast(ctx, c.lat, c.lon, meteoPastDays, meteoForecastDays)
	if err != nil {
		return err
	}

	at := now()
	hourly := meteoHourlyItems(f, at)
	daily := meteoDailyItems(f, at)
	e.Current.AddData(SourceOpenMeteo, hourly)
	e.Hourly.AddData(SourceOpenMeteo, hourly)
	e.Daily.AddData(SourceOpenMeteo, daily)
	e.History.AddData(SourceOpenMeteo, append(hourly, daily...))
	return nil
}
