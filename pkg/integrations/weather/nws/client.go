// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package nws is a minimal client for the National Weather Service API
// (api.weather.gov). No key is required; the service asks for a
// descriptive User-Agent instead.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/version"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.weather.gov"

const defaultTimeout = 10 * time.Second

// Client calls the NWS API.
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

// GridPoints carries the per-location forecast endpoints resolved from a
// coordinate pair. They are stable for a location.
type GridPoints struct {
	ForecastURL       string
	ForecastHourlyURL string
}

// Points resolves the forecast endpoints for a coordinate pair.
func (c *Client) Points(ctx context.Context, lat, lon float64) (*GridPoints, error) {
	var out struct {
		Properties struct {
			Forecast       string `json:"forecast"`
			ForecastHourly string `json:"forecastHourly"`
		} `json:"properties"`
	}
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	if out.Properties.Forecast == "" || out.Properties.ForecastHourly == "" {
		return nil, errors.NewTemporaryf("nws points response carries no forecast endpoints")
	}
	return &GridPoints{
		ForecastURL:       out.Properties.Forecast,
		ForecastHourlyURL: out.Properties.ForecastHourly,
	}, nil
}

// Measurement is a value-with-unit wrapper used across NWS payloads.
// Value is nil when the station did not report.
type Measurement struct {
	UnitCode string   `json:"unitCode"`
	Value    *float64 `json:"value"`
}

// Period is one forecast slot: an hour on the hourly endpoint, a half
// day on the daily one.
type Period struct {
	StartTime                  time.Time   `json:"startTime"`
	EndTime                    time.Time   `json:"endTime"`
	IsDaytime                  bool        `json:"isDaytime"`
	Temperature                float64     `json:"temperature"`
	TemperatureUnit            string      `json:"temperatureUnit"`
	WindSpeed                  string      `json:"windSpeed"`
	WindDirection              string      `json:"windDirection"`
	ShortForecast              string      `json:"shortForecast"`
	ProbabilityOfPrecipitation Measurement `json:"probabilityOfPrecipitation"`
	RelativeHumidity           Measurement `json:"relativeHumidity"`
	Dewpoint                   Measurement `json:"dewpoint"`
}

// Forecast fetches the periods behind a forecast endpoint resolved by
// Points.
func (c *Client) Forecast(ctx context.Context, url string) ([]Period, error) {
	var out struct {
		Properties struct {
			Periods []Period `json:"periods"`
		} `json:"properties"`
	}
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return out.Properties.Periods, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewBadInputf("building nws request: %v", err)
	}
	req.Header.Set("User-Agent", "hearth/"+version.Version)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapConnection(err, "calling nws")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return errors.NewTemporaryf("nws returned %d for %s", resp.StatusCode, url)
	case resp.StatusCode >= 400:
		return errors.NewBadInputf("nws rejected %s with %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewTemporaryf("decoding nws response: %v", err)
	}
	return nil
}
