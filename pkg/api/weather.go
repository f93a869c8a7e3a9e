// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DataDog/hearth/pkg/errors"
)

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.deps.Weather == nil {
		writeError(w, errors.NewIntegrationDisabledf("weather integration is not running"))
		return
	}
	e := s.deps.Weather
	switch window := mux.Vars(r)["window"]; window {
	case "current":
		writeJSON(w, http.StatusOK, e.Current.Intervals())
	case "hourly":
		writeJSON(w, http.StatusOK, e.Hourly.Intervals())
	case "daily":
		writeJSON(w, http.StatusOK, e.Daily.Intervals())
	case "history":
		writeJSON(w, http.StatusOK, e.History.Intervals())
	case "astral":
		writeJSON(w, http.StatusOK, e.Astral.Intervals())
	default:
		writeError(w, errors.NewBadInputf("unknown weather window %q", window))
	}
}
