// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/util/log"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("writing response: %v", err)
	}
}

// writeError maps the taxonomy onto HTTP statuses. Unexpected errors
// answer a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.IsBadInput(err), errors.IsIntegrationAttribute(err), errors.IsConfig(err):
		status = http.StatusBadRequest
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsConflict(err):
		status = http.StatusConflict
	case errors.IsTemporary(err), errors.IsConnection(err), errors.IsIntegrationDisabled(err):
		status = http.StatusServiceUnavailable
	case errors.IsIntegration(err):
		status = http.StatusBadRequest
	default:
		log.Errorf("unexpected error on api surface: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Reason: errors.Reason(err)})
}
