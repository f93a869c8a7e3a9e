// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package sunapi is a minimal client for sunrise-sunset.org. The
// service is keyless; formatted=0 selects RFC3339 timestamps and a
// day length in seconds.
package sunapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.sunrise-sunset.org"

const defaultTimeout = 10 * time.Second

// Client calls the sunrise-sunset.org API.
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

// Day carries one day's solar events in UTC.
type Day struct {
	Sunrise          time.Time
	Sunset           time.Time
	SolarNoon        time.Time
	DayLengthSeconds float64
}

// Lookup fetches the solar events for a coordinate pair on a date. The
// date's year, month and day are used; the time of day is ignored.
func (c *Client) Lookup(ctx context.Context, lat, lon float64, date time.Time) (*Day, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("date", date.Format("2006-01-02"))
	q.Set("formatted", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.NewBadInputf("building sunrise-sunset request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapConnection(err, "calling sunrise-sunset")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.NewTemporaryf("sunrise-sunset returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, errors.NewBadInputf("sunrise-sunset rejected the request with %d", resp.StatusCode)
	}

	var out struct {
		Status  string `json:"status"`
		Results struct {
			Sunrise   time.Time `json:"sunrise"`
			Sunset    time.Time `json:"sunset"`
			SolarNoon time.Time `json:"solar_noon"`
			DayLength float64   `json:"day_length"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.NewTemporaryf("decoding sunrise-sunset response: %v", err)
	}
	if out.Status != "OK" {
		return nil, errors.NewBadInputf("sunrise-sunset reported status %q", out.Status)
	}
	d := &Day{
		Sunrise:          out.Results.Sunrise.UTC(),
		Sunset:           out.Results.Sunset.UTC(),
		SolarNoon:        out.Results.SolarNoon.UTC(),
		DayLengthSeconds: out.Results.DayLength,
	}
	return d, nil
}
