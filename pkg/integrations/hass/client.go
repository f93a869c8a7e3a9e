// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package hass integrates a Home Assistant instance: REST client, state
// polling, entity synchronization and control dispatch.
package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DataDog/hearth/pkg/errors"
)

// DefaultTimeout bounds every Home Assistant API call.
const DefaultTimeout = 10 * time.Second

// Client talks to the Home Assistant REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the given base URL and long-lived access
// token. A trailing slash on the URL is tolerated.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Ping verifies the API is reachable and the token works.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodGet, "/api/", nil, &out)
}

// States fetches the flat list of every remote state.
func (c *Client) States(ctx context.Context) ([]RemoteState, error) {
	var out []RemoteState
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetState writes a state value directly, bypassing any device.
func (c *Client) SetState(ctx context.Context, entityID, state string, attributes map[string]any) error {
	body := map[string]any{"state": state}
	if len(attributes) > 0 {
		body["attributes"] = attributes
	}
	return c.do(ctx, http.MethodPost, "/api/states/"+entityID, body, nil)
}

// CallService invokes a Home Assistant service against one entity.
func (c *Client) CallService(ctx context.Context, domain, service, entityID string, data map[string]any) error {
	body := map[string]any{"entity_id": entityID}
	for k, v := range data {
		body[k] = v
	}
	return c.do(ctx, http.MethodPost, "/api/services/"+domain+"/"+service, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.NewBadInputf("encoding %s %s body: %v", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewBadInputf("building %s %s request: %v", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapConnection(err, fmt.Sprintf("calling %s %s", method, path))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.NewConnectionf("%s %s: unauthorized (check the access token)", method, path)
	case resp.StatusCode >= 500:
		return errors.NewTemporaryf("%s %s: server returned %d", method, path, resp.StatusCode)
	case resp.StatusCode >= 400:
		return errors.NewBadInputf("%s %s: rejected with %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewTemporaryf("decoding %s %s response: %v", method, path, err)
	}
	return nil
}
