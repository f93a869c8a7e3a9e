// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package openmeteo is a minimal client for the Open-Meteo forecast API
// (open-meteo.com). The service is keyless and returns hourly and daily
// series as parallel arrays.
package openmeteo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.open-meteo.com"

const defaultTimeout = 10 * time.Second

var hourlyVariables = []string{
	"temperature_2m",
	"apparent_temperature",
	"dew_point_2m",
	"relative_humidity_2m",
	"surface_pressure",
	"wind_speed_10m",
	"wind_gusts_10m",
	"wind_direction_10m",
	"cloud_cover",
	"visibility",
	"precipitation",
	"precipitation_probability",
	"is_day",
	"weather_code",
}

var dailyVariables = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"precipitation_probability_max",
	"wind_speed_10m_max",
	"weather_code",
}

// Client calls the Open-Meteo API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client against baseURL, or the production endpoint
// when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// HourlySeries holds the hourly parallel arrays. Times are naive UTC
// strings of the form 2006-01-02T15:04.
type HourlySeries struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	DewPoint                 []float64 `json:"dew_point_2m"`
	RelativeHumidity         []float64 `json:"relative_humidity_2m"`
	SurfacePressure          []float64 `json:"surface_pressure"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	WindGusts                []float64 `json:"wind_gusts_10m"`
	WindDirection            []float64 `json:"wind_direction_10m"`
	CloudCover               []float64 `json:"cloud_cover"`
	Visibility               []float64 `json:"visibility"`
	Precipitation            []float64 `json:"precipitation"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	IsDay                    []int     `json:"is_day"`
	WeatherCode              []int     `json:"weather_code"`
}

// DailySeries holds the daily parallel arrays. Times are naive UTC
// dates of the form 2006-01-02.
type DailySeries struct {
	Time                        []string  `json:"time"`
	TemperatureMax              []float64 `json:"temperature_2m_max"`
	TemperatureMin              []float64 `json:"temperature_2m_min"`
	PrecipitationSum            []float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
	WeatherCode                 []int     `json:"weather_code"`
}

// Forecast is one response: hourly and daily series plus the unit map
// the service reports for the hourly variables.
type Forecast struct {
	HourlyUnits map[string]string `json:"hourly_units"`
	Hourly      HourlySeries      `json:"hourly"`
	Daily       DailySeries       `json:"daily"`
}

// Forecast fetches hourly and daily series for a coordinate pair.
// pastDays extends the series backwards for history.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, pastDays, forecastDays int) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("hourly", strings.Join(hourlyVariables, ","))
	q.Set("daily", strings.Join(dailyVariables, ","))
	q.Set("timezone", "UTC")
	q.Set("past_days", strconv.Itoa(pastDays))
	q.Set("forecast_days", strconv.Itoa(forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.NewBadInputf("building open-meteo request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapConnection(err, "calling open-meteo")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.NewTemporaryf("open-meteo returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, errors.NewBadInputf("open-meteo rejected the request with %d", resp.StatusCode)
	}
	out := &Forecast{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, errors.NewTemporaryf("decoding open-meteo response: %v", err)
	}
	return out, nil
}

// ParseHourlyTime parses the naive UTC timestamps the hourly series
// uses.
func ParseHourlyTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewBadInputf("parsing open-meteo hourly time %q: %v", s, err)
	}
	return t, nil
}

// ParseDailyTime parses the naive UTC dates the daily series uses.
func ParseDailyTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewBadInputf("parsing open-meteo daily time %q: %v", s, err)
	}
	return t, nil
}

// DescribeWeatherCode translates a WMO weather interpretation code into
// a short human description.
func DescribeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 2:
		return "Partly Cloudy"
	case code == 3:
		return "Overcast"
	case code <= 48:
		return "Fog"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Rain Showers"
	case code <= 86:
		return "Snow Showers"
	case code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
