// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package weatherdata defines the merged weather and astral condition
// records produced by the interval aggregation engine, plus the field
// accessor tables the engine iterates over.
package weatherdata

import "github.com/DataDog/hearth/pkg/interval"

// WeatherConditions is one interval's merged weather record. Fields the
// sources never reported stay nil.
type WeatherConditions struct {
	Temperature              *interval.NumericDataPoint `json:"temperature,omitempty"`
	ApparentTemperature      *interval.NumericDataPoint `json:"apparent_temperature,omitempty"`
	DewPoint                 *interval.NumericDataPoint `json:"dew_point,omitempty"`
	RelativeHumidity         *interval.NumericDataPoint `json:"relative_humidity,omitempty"`
	BarometricPressure       *interval.NumericDataPoint `json:"barometric_pressure,omitempty"`
	WindSpeed                *interval.NumericDataPoint `json:"wind_speed,omitempty"`
	WindGust                 *interval.NumericDataPoint `json:"wind_gust,omitempty"`
	WindDirection            *interval.NumericDataPoint `json:"wind_direction,omitempty"`
	Visibility               *interval.NumericDataPoint `json:"visibility,omitempty"`
	CloudCover               *interval.NumericDataPoint `json:"cloud_cover,omitempty"`
	Precipitation            *interval.NumericDataPoint `json:"precipitation,omitempty"`
	PrecipitationProbability *interval.NumericDataPoint `json:"precipitation_probability,omitempty"`
	IsDaytime                *interval.BooleanDataPoint `json:"is_daytime,omitempty"`
	Description              *interval.StringDataPoint  `json:"description,omitempty"`
}

// AstralConditions is one day's merged sun and moon record.
type AstralConditions struct {
	Sunrise         *interval.TimeDataPoint    `json:"sunrise,omitempty"`
	Sunset          *interval.TimeDataPoint    `json:"sunset,omitempty"`
	SolarNoon       *interval.TimeDataPoint    `json:"solar_noon,omitempty"`
	DaylightSeconds *interval.NumericDataPoint `json:"daylight_seconds,omitempty"`
	MoonPhase       *interval.StringDataPoint  `json:"moon_phase,omitempty"`
}

func numericField[E any](name string, slot func(*E) **interval.NumericDataPoint) interval.Field[E] {
	return interval.Field[E]{
		Name: name,
		Get: func(e *E) interval.DataPoint {
			if p := *slot(e); p != nil {
				return p
			}
			return nil
		},
		Set: func(e *E, dp interval.DataPoint) {
			if dp == nil {
				*slot(e) = nil
				return
			}
			*slot(e), _ = dp.(*interval.NumericDataPoint)
		},
	}
}

func booleanField[E any](name string, slot func(*E) **interval.BooleanDataPoint) interval.Field[E] {
	return interval.Field[E]{
		Name: name,
		Get: func(e *E) interval.DataPoint {
			if p := *slot(e); p != nil {
				return p
			}
			return nil
		},
		Set: func(e *E, dp interval.DataPoint) {
			if dp == nil {
				*slot(e) = nil
				return
			}
			*slot(e), _ = dp.(*interval.BooleanDataPoint)
		},
	}
}

func timeField[E any](name string, slot func(*E) **interval.TimeDataPoint) interval.Field[E] {
	return interval.Field[E]{
		Name: name,
		Get: func(e *E) interval.DataPoint {
			if p := *slot(e); p != nil {
				return p
			}
			return nil
		},
		Set: func(e *E, dp interval.DataPoint) {
			if dp == nil {
				*slot(e) = nil
				return
			}
			*slot(e), _ = dp.(*interval.TimeDataPoint)
		},
	}
}

func stringField[E any](name string, slot func(*E) **interval.StringDataPoint) interval.Field[E] {
	return interval.Field[E]{
		Name: name,
		Get: func(e *E) interval.DataPoint {
			if p := *slot(e); p != nil {
				return p
			}
			return nil
		},
		Set: func(e *E, dp interval.DataPoint) {
			if dp == nil {
				*slot(e) = nil
				return
			}
			*slot(e), _ = dp.(*interval.StringDataPoint)
		},
	}
}

// WeatherFields returns the accessor table for WeatherConditions.
func WeatherFields() []interval.Field[WeatherConditions] {
	return []interval.Field[WeatherConditions]{
		numericField("temperature", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.Temperature }),
		numericField("apparent_temperature", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.ApparentTemperature }),
		numericField("dew_point", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.DewPoint }),
		numericField("relative_humidity", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.RelativeHumidity }),
		numericField("barometric_pressure", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.BarometricPressure }),
		numericField("wind_speed", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.WindSpeed }),
		numericField("wind_gust", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.WindGust }),
		numericField("wind_direction", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.WindDirection }),
		numericField("visibility", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.Visibility }),
		numericField("cloud_cover", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.CloudCover }),
		numericField("precipitation", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.Precipitation }),
		numericField("precipitation_probability", func(c *WeatherConditions) **interval.NumericDataPoint { return &c.PrecipitationProbability }),
		booleanField("is_daytime", func(c *WeatherConditions) **interval.BooleanDataPoint { return &c.IsDaytime }),
		stringField("description", func(c *WeatherConditions) **interval.StringDataPoint { return &c.Description }),
	}
}

// AstralFields returns the accessor table for AstralConditions.
func AstralFields() []interval.Field[AstralConditions] {
	return []interval.Field[AstralConditions]{
		timeField("sunrise", func(c *AstralConditions) **interval.TimeDataPoint { return &c.Sunrise }),
		timeField("sunset", func(c *AstralConditions) **interval.TimeDataPoint { return &c.Sunset }),
		timeField("solar_noon", func(c *AstralConditions) **interval.TimeDataPoint { return &c.SolarNoon }),
		numericField("daylight_seconds", func(c *AstralConditions) **interval.NumericDataPoint { return &c.DaylightSeconds }),
		stringField("moon_phase", func(c *AstralConditions) **interval.StringDataPoint { return &c.MoonPhase }),
	}
}
