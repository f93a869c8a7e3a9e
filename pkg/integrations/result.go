// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationResult collects configuration problems found before an
// enable or settings update is persisted.
type ValidationResult struct {
	Errors []string `json:"errors,omitempty"`
}

// Valid reports whether the configuration passed.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Merge appends the other result's findings.
func (r *ValidationResult) Merge(o ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
}

// ProcessingResult accumulates what one sync run did. Per-device failures
// land in Errors without aborting the run; the run id ties API responses
// to log lines.
type ProcessingResult struct {
	RunID     uuid.UUID `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Messages  []string  `json:"messages,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// NewProcessingResult starts an empty result with a fresh run id.
func NewProcessingResult() *ProcessingResult {
	return &ProcessingResult{RunID: uuid.New(), StartedAt: time.Now().UTC()}
}

// Logf records a progress message.
func (r *ProcessingResult) Logf(format string, args ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// Failf records a non-fatal failure.
func (r *ProcessingResult) Failf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Failed reports whether any failure was recorded.
func (r *ProcessingResult) Failed() bool { return len(r.Errors) > 0 }
