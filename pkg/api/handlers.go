// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/status/health"
	"github.com/DataDog/hearth/pkg/version"
)

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Version       string                   `json:"version"`
	StartedAt     time.Time                `json:"started_at"`
	UptimeSeconds float64                  `json:"uptime_seconds"`
	Monitors      []monitor.HealthSnapshot `json:"monitors"`
	Heartbeats    health.Status            `json:"heartbeats"`
	Integrations  []integrations.Info      `json:"integrations"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Version:       version.Full(),
		StartedAt:     s.startedAt,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}
	if s.deps.Monitors != nil {
		for _, p := range s.deps.Monitors.Providers() {
			resp.Monitors = append(resp.Monitors, p.Health().Snapshot())
		}
		resp.Heartbeats = s.deps.Monitors.Heartbeats().Snapshot()
	}
	if s.deps.Registry != nil {
		resp.Integrations = s.deps.Registry.List()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListIntegrations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.List())
}

type attrsBody struct {
	Attributes map[string]string `json:"attributes"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewBadInputf("malformed request body: %v", err)
	}
	return nil
}

func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body attrsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Registry.Enable(r.Context(), id, body.Attributes); err != nil {
		writeError(w, err)
		return
	}
	s.describeOut(w, id)
}

func (s *Server) handleDisable(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Registry.Disable(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.describeOut(w, id)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body attrsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Registry.UpdateSettings(r.Context(), id, body.Attributes); err != nil {
		writeError(w, err)
		return
	}
	s.describeOut(w, id)
}

func (s *Server) describeOut(w http.ResponseWriter, id string) {
	info, err := s.deps.Registry.Describe(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Registry.Sync(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIntegrationHealth(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h, err := s.deps.Registry.Health(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "health": h})
}

type controlBody struct {
	IntegrationKey string         `json:"integration_key"`
	Payload        map[string]any `json:"payload,omitempty"`
	Value          string         `json:"value"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var body controlBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	key, err := model.ParseIntegrationKey(body.IntegrationKey)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Registry.Control(r.Context(), key, body.Payload, body.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type sensorReadings struct {
	Sensor    model.Sensor           `json:"sensor"`
	Responses []model.SensorResponse `json:"responses"`
}

func (s *Server) handleLatestSensors(w http.ResponseWriter, r *http.Request) {
	var keys []model.IntegrationKey
	for _, raw := range r.URL.Query()["key"] {
		key, err := model.ParseIntegrationKey(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		keys = append(keys, key)
	}

	latest, err := s.deps.Registry.LatestSensorResponses(r.Context(), keys)
	if err != nil {
		writeError(w, err)
		return
	}
	rows := make([]sensorReadings, 0, len(latest))
	for sensor, responses := range latest {
		rows = append(rows, sensorReadings{Sensor: sensor, Responses: responses})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sensor.ID < rows[j].Sensor.ID })
	writeJSON(w, http.StatusOK, rows)
}
