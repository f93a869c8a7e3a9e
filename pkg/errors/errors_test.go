// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesMatchTheirKind(t *testing.T) {
	err := NewNotFoundf("entity %d", 42)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
	assert.Equal(t, "entity 42", err.Error())
	assert.Equal(t, "not found", Reason(err))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("while syncing: %w", NewConflictf("duplicate key"))
	assert.True(t, IsConflict(err))
	assert.Equal(t, "conflict", Reason(err))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapStorage(cause, "ping database")
	require.True(t, IsStorage(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ping database: connection refused", err.Error())
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewTemporaryf("busy")))
	assert.True(t, IsRecoverable(NewConnectionf("refused")))
	assert.True(t, IsRecoverable(NewIntegrationDisabledf("off")))
	assert.False(t, IsRecoverable(NewConfigf("bad yaml")))
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestClassifyRemote(t *testing.T) {
	tests := []struct {
		msg  string
		want RemoteFailure
	}{
		{"401 Unauthorized", RemoteAuthFailure},
		{"invalid bearer token", RemoteAuthFailure},
		{"dial tcp: connect: connection refused", RemoteConnectivityFailure},
		{"could not resolve host", RemoteConnectivityFailure},
		{"context deadline exceeded (timeout)", RemoteConnectivityFailure},
		{"500 internal server error", RemoteTemporaryFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRemote(errors.New(tt.msg)), tt.msg)
	}
}

func TestIsTransientMessage(t *testing.T) {
	assert.True(t, IsTransientMessage(errors.New("read timeout")))
	assert.True(t, IsTransientMessage(errors.New("temporary glitch")))
	assert.True(t, IsTransientMessage(NewConnectionf("refused")))
	assert.False(t, IsTransientMessage(errors.New("schema mismatch")))
	assert.False(t, IsTransientMessage(nil))
}
